package locale

// Key names a UI string shown by the widget.
type Key string

const (
	KeyNewSlotLabel      Key = "newSlotLabel"
	KeyDefaultTitle      Key = "defaultTitle"
	KeyAdminLoginSuccess Key = "adminLoginSuccess"
	KeyAdminLoginFailed  Key = "adminLoginFailed"
	KeyAdminLoggedOut    Key = "adminLoggedOut"
	KeyPasswordChanged   Key = "passwordChanged"
	KeyJoinSubmitted     Key = "joinSubmitted"
	KeyJoinFailed        Key = "joinFailed"
	KeyRequestUpdated    Key = "requestUpdated"
	KeyRequestApproved   Key = "requestApproved"
	KeyRequestRejected   Key = "requestRejected"
	KeyRequestDeleted    Key = "requestDeleted"
	KeyCopied            Key = "copied"
	KeyLinkCopied        Key = "linkCopied"
	KeyCopyFallback      Key = "copyFallback"
	KeySpotsLeft         Key = "spotsLeft"
	KeyUnscheduled       Key = "unscheduled"
	KeySaveFailed        Key = "saveFailed"
)

var uiStrings = map[Language]map[Key]string{
	English: {
		KeyNewSlotLabel:      "New slot",
		KeyDefaultTitle:      "Availability",
		KeyAdminLoginSuccess: "Admin mode enabled",
		KeyAdminLoginFailed:  "Wrong password",
		KeyAdminLoggedOut:    "Logged out",
		KeyPasswordChanged:   "Password changed",
		KeyJoinSubmitted:     "Request sent",
		KeyJoinFailed:        "Could not send the request",
		KeyRequestUpdated:    "Request updated",
		KeyRequestApproved:   "Request approved",
		KeyRequestRejected:   "Request rejected",
		KeyRequestDeleted:    "Request deleted",
		KeyCopied:            "Copied",
		KeyLinkCopied:        "Link copied",
		KeyCopyFallback:      "Copy the text:",
		KeySpotsLeft:         "spots left",
		KeyUnscheduled:       "Unscheduled",
		KeySaveFailed:        "Could not save",
	},
	Romanian: {
		KeyNewSlotLabel:      "Interval nou",
		KeyDefaultTitle:      "Disponibilitate",
		KeyAdminLoginSuccess: "Modul admin activat",
		KeyAdminLoginFailed:  "Parolă greșită",
		KeyAdminLoggedOut:    "Ai ieșit din cont",
		KeyPasswordChanged:   "Parola a fost schimbată",
		KeyJoinSubmitted:     "Cererea a fost trimisă",
		KeyJoinFailed:        "Cererea nu a putut fi trimisă",
		KeyRequestUpdated:    "Cererea a fost actualizată",
		KeyRequestApproved:   "Cererea a fost acceptată",
		KeyRequestRejected:   "Cererea a fost respinsă",
		KeyRequestDeleted:    "Cererea a fost ștearsă",
		KeyCopied:            "Copiat",
		KeyLinkCopied:        "Link copiat",
		KeyCopyFallback:      "Copiază textul:",
		KeySpotsLeft:         "locuri libere",
		KeyUnscheduled:       "Fără dată",
		KeySaveFailed:        "Nu s-a putut salva",
	},
	Russian: {
		KeyNewSlotLabel:      "Новый слот",
		KeyDefaultTitle:      "Доступность",
		KeyAdminLoginSuccess: "Режим администратора включен",
		KeyAdminLoginFailed:  "Неверный пароль",
		KeyAdminLoggedOut:    "Вы вышли",
		KeyPasswordChanged:   "Пароль изменен",
		KeyJoinSubmitted:     "Заявка отправлена",
		KeyJoinFailed:        "Не удалось отправить заявку",
		KeyRequestUpdated:    "Заявка обновлена",
		KeyRequestApproved:   "Заявка принята",
		KeyRequestRejected:   "Заявка отклонена",
		KeyRequestDeleted:    "Заявка удалена",
		KeyCopied:            "Скопировано",
		KeyLinkCopied:        "Ссылка скопирована",
		KeyCopyFallback:      "Скопируйте текст:",
		KeySpotsLeft:         "мест осталось",
		KeyUnscheduled:       "Без даты",
		KeySaveFailed:        "Не удалось сохранить",
	},
}

// Text returns the UI string for key. Missing translations fall back to
// English and then to the key itself.
func (l Language) Text(key Key) string {
	if s, ok := uiStrings[l][key]; ok {
		return s
	}
	if s, ok := uiStrings[English][key]; ok {
		return s
	}
	return string(key)
}
