package i18n

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Message keys. The English text doubles as the key.
const (
	MsgAuthRequired          = "Authentication required"
	MsgAccessDenied          = "You do not have permission to perform this action"
	MsgInvalidRequest        = "Invalid request body"
	MsgInternalError         = "Something went wrong, please try again later"
	MsgRateLimited           = "Too many requests, please try again later"
	MsgInvalidCredentials    = "Invalid email or password"
	MsgEmailTaken            = "An account with this email already exists"
	MsgPasswordTooShort      = "Password must be at least %d characters"
	MsgInvalidDateOfBirth    = "Date of birth must use the YYYY-MM-DD format"
	MsgUserNotFound          = "User not found"
	MsgLoggedOut             = "Logged out successfully"
	MsgSessionFailed         = "Failed to save session"
	MsgOrganizationNotFound  = "Organization not found"
	MsgOrganizationCreated   = "Organization created"
	MsgOrganizationDeleted   = "Organization deleted"
	MsgOrganizationHasMember = "The organization still has members"
	MsgInvalidOrganization   = "Organization name and type are required"
	MsgRoleNotFound          = "The selected role does not exist in this organization"
	MsgMemberNotFound        = "Member not found"
	MsgMemberRemoved         = "Member removed"
	MsgLastAdmin             = "The organization must keep at least one admin"
	MsgCannotRemoveYourself  = "You cannot remove yourself"
	MsgNotAMember            = "You are not a member of this organization"
	MsgMainOrganizationSet   = "Main organization updated"
	MsgInvitationSent        = "Invitation sent"
	MsgInvitationNotFound    = "Invitation not found"
	MsgInvitationExpired     = "This invitation has expired"
	MsgInvitationNotPending  = "This invitation is no longer valid"
	MsgInvitationDuplicate   = "A pending invitation already exists for this email"
	MsgInvitationEmailFailed = "The invitation email could not be delivered"
	MsgInvitationEmailBound  = "This invitation was sent to a different email address"
	MsgInvitationAccepted    = "Invitation accepted"
	MsgInvitationDeleted     = "Invitation deleted"
	MsgInvitationApproved    = "Membership request approved"
	MsgInvitationRejected    = "Membership request rejected"
	MsgAlreadyMember         = "This account is already a member of the organization"
	MsgMembershipConflict    = "The membership could not be created because of a conflicting record"
	MsgCheckPassword         = "This email is already registered, check your password"
	MsgLinkCreated           = "Invite link created"
	MsgLinkDeleted           = "Invite link deleted"
	MsgLinkNotFound          = "Invite link not found"
	MsgLinkExpired           = "This invite link has expired"
	MsgLinkExpiryInPast      = "The expiry date must be in the future"
	MsgRequestPending        = "Your request was sent and awaits approval by an administrator"
	MsgJoinedOrganization    = "You joined the organization"
	MsgNotificationNotFound  = "Notification not found"
	MsgOK                    = "OK"
)

var spanish = map[string]string{
	MsgAuthRequired:          "Se requiere autenticación",
	MsgAccessDenied:          "No tienes permiso para realizar esta acción",
	MsgInvalidRequest:        "Cuerpo de la solicitud inválido",
	MsgInternalError:         "Algo salió mal, inténtalo de nuevo más tarde",
	MsgRateLimited:           "Demasiadas solicitudes, inténtalo de nuevo más tarde",
	MsgInvalidCredentials:    "Correo o contraseña incorrectos",
	MsgEmailTaken:            "Ya existe una cuenta con este correo",
	MsgPasswordTooShort:      "La contraseña debe tener al menos %d caracteres",
	MsgInvalidDateOfBirth:    "La fecha de nacimiento debe tener el formato AAAA-MM-DD",
	MsgUserNotFound:          "Usuario no encontrado",
	MsgLoggedOut:             "Sesión cerrada",
	MsgSessionFailed:         "No se pudo guardar la sesión",
	MsgOrganizationNotFound:  "Organización no encontrada",
	MsgOrganizationCreated:   "Organización creada",
	MsgOrganizationDeleted:   "Organización eliminada",
	MsgOrganizationHasMember: "La organización todavía tiene miembros",
	MsgInvalidOrganization:   "El nombre y el tipo de la organización son obligatorios",
	MsgRoleNotFound:          "El rol seleccionado no existe en esta organización",
	MsgMemberNotFound:        "Miembro no encontrado",
	MsgMemberRemoved:         "Miembro eliminado",
	MsgLastAdmin:             "La organización debe conservar al menos un administrador",
	MsgCannotRemoveYourself:  "No puedes eliminarte a ti mismo",
	MsgNotAMember:            "No eres miembro de esta organización",
	MsgMainOrganizationSet:   "Organización principal actualizada",
	MsgInvitationSent:        "Invitación enviada",
	MsgInvitationNotFound:    "Invitación no encontrada",
	MsgInvitationExpired:     "Esta invitación ha expirado",
	MsgInvitationNotPending:  "Esta invitación ya no es válida",
	MsgInvitationDuplicate:   "Ya existe una invitación pendiente para este correo",
	MsgInvitationEmailFailed: "No se pudo entregar el correo de invitación",
	MsgInvitationEmailBound:  "Esta invitación fue enviada a otro correo",
	MsgInvitationAccepted:    "Invitación aceptada",
	MsgInvitationDeleted:     "Invitación eliminada",
	MsgInvitationApproved:    "Solicitud de membresía aprobada",
	MsgInvitationRejected:    "Solicitud de membresía rechazada",
	MsgAlreadyMember:         "Esta cuenta ya es miembro de la organización",
	MsgMembershipConflict:    "No se pudo crear la membresía por un registro en conflicto",
	MsgCheckPassword:         "Este correo ya está registrado, revisa tu contraseña",
	MsgLinkCreated:           "Enlace de invitación creado",
	MsgLinkDeleted:           "Enlace de invitación eliminado",
	MsgLinkNotFound:          "Enlace de invitación no encontrado",
	MsgLinkExpired:           "Este enlace de invitación ha expirado",
	MsgLinkExpiryInPast:      "La fecha de expiración debe estar en el futuro",
	MsgRequestPending:        "Tu solicitud fue enviada y espera la aprobación de un administrador",
	MsgJoinedOrganization:    "Te uniste a la organización",
	MsgNotificationNotFound:  "Notificación no encontrada",
	MsgOK:                    "OK",
}

func init() {
	for key, text := range spanish {
		if err := message.SetString(language.Spanish, key, text); err != nil {
			panic(err)
		}
	}
}
