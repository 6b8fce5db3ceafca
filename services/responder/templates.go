package responder

import "phonedesk/models"

// Templates see a view: .Business, .Order, .Slots and .Resp.
var dutch = map[models.ResponseCode]string{
	models.RespGreeting:           `Goedendag, u spreekt met {{.Business}}. {{if .Order}}Wat wilt u bestellen?{{else}}Waarmee kan ik u helpen?{{end}}`,
	models.RespAskService:         `Voor welke behandeling wilt u een afspraak maken?`,
	models.RespAskDate:            `Op welke dag wilt u komen?`,
	models.RespAskTime:            `Hoe laat wilt u komen?`,
	models.RespAskName:            `Op welke naam mag ik het noteren?`,
	models.RespAskItems:           `Wat wilt u bestellen?`,
	models.RespAskFulfillment:     `Wilt u het laten bezorgen of komt u het ophalen?`,
	models.RespAskAddress:         `Op welk adres mogen we het bezorgen?`,
	models.RespAnythingElse:       `Ik heb {{items .Slots.Items}} genoteerd. Wilt u nog iets anders?`,
	models.RespAskMoreItems:       `Wat wilt u er nog bij?`,
	models.RespItemNotFound:       `Sorry, {{list .Resp.Items}} kan ik niet vinden op de kaart. Kunt u het nog een keer zeggen?`,
	models.RespItemUnavailable:    `{{list .Resp.Items}} is op dit moment niet beschikbaar. Wilt u iets anders?`,
	models.RespServiceNotFound:    `Die behandeling kan ik niet vinden. Welke behandeling wilt u?`,
	models.RespNoDelivery:         `We bezorgen helaas niet. Komt u het ophalen?`,
	models.RespUnavailable:        `Om {{clock .Resp.Rejected}} is het helaas al bezet.{{template "alts" .}}`,
	models.RespClosed:             `Op {{weekday .Resp.Rejected}} zijn we gesloten. Welke andere dag past u?`,
	models.RespOutsideHours:       `{{with .Resp.Hours}}We zijn die dag open van {{clock .Open}} tot {{clock .Close}}.{{else}}Dan zijn we niet open.{{end}}{{template "alts" .}}`,
	models.RespInPast:             `Dat tijdstip is al voorbij.{{template "alts" .}}`,
	models.RespConfirmAppointment: `Ik noteer {{lower .Slots.Service}} op {{date .Slots.Date}} om {{clock .Slots.Time}} op naam van {{.Slots.Name}}. Klopt dat?`,
	models.RespConfirmOrder:       `Ik noteer {{items .Slots.Items}}, {{if eq .Slots.Fulfillment "delivery"}}te bezorgen op {{.Slots.Address}}{{else}}om af te halen{{end}}, op naam van {{.Slots.Name}}. Dat is samen {{money .Slots.OrderTotal}}. Klopt dat?`,
	models.RespConfirmUnclear:     `Sorry, dat verstond ik niet. Klopt {{if .Order}}de bestelling{{else}}de afspraak{{end}}? Zeg ja of nee.`,
	models.RespBooked:             `Uw afspraak staat genoteerd. Tot ziens.`,
	models.RespOrderPlaced:        `Uw bestelling is geplaatst. {{if eq .Slots.Fulfillment "delivery"}}We komen het zo snel mogelijk brengen.{{else}}U kunt het straks ophalen.{{end}} Tot ziens.`,
	models.RespBookingFailed:      `Het vastleggen is niet gelukt. Zal ik het opnieuw vastleggen?`,
	models.RespEscalate:           `Ik verbind u door met een medewerker.`,
	models.RespEscalateCancel:     `Voor annuleren of verzetten verbind ik u door met een medewerker.`,
	models.RespAlreadyCompleted:   `Uw {{if .Order}}bestelling{{else}}afspraak{{end}} is al vastgelegd. Tot ziens.`,
	models.RespError:              `Er ging iets mis. Belt u later nog eens.`,
}

var english = map[models.ResponseCode]string{
	models.RespGreeting:           `Hello, you are speaking with {{.Business}}. {{if .Order}}What would you like to order?{{else}}How can I help you?{{end}}`,
	models.RespAskService:         `Which treatment would you like to book?`,
	models.RespAskDate:            `Which day would you like to come in?`,
	models.RespAskTime:            `What time would you like to come in?`,
	models.RespAskName:            `What name can I put it under?`,
	models.RespAskItems:           `What would you like to order?`,
	models.RespAskFulfillment:     `Would you like it delivered or will you pick it up?`,
	models.RespAskAddress:         `What address should we deliver to?`,
	models.RespAnythingElse:       `I have {{items .Slots.Items}}. Would you like anything else?`,
	models.RespAskMoreItems:       `What else would you like?`,
	models.RespItemNotFound:       `Sorry, I could not find {{list .Resp.Items}} on the menu. Could you say that again?`,
	models.RespItemUnavailable:    `{{list .Resp.Items}} is not available right now. Would you like something else?`,
	models.RespServiceNotFound:    `I could not find that treatment. Which treatment would you like?`,
	models.RespNoDelivery:         `Sorry, we do not deliver. Will you pick it up?`,
	models.RespUnavailable:        `{{clock .Resp.Rejected}} is already taken.{{template "alts" .}}`,
	models.RespClosed:             `We are closed on {{weekday .Resp.Rejected}}. Which other day suits you?`,
	models.RespOutsideHours:       `{{with .Resp.Hours}}We are open from {{clock .Open}} to {{clock .Close}} that day.{{else}}We are not open then.{{end}}{{template "alts" .}}`,
	models.RespInPast:             `That time has already passed.{{template "alts" .}}`,
	models.RespConfirmAppointment: `I have {{lower .Slots.Service}} on {{date .Slots.Date}} at {{clock .Slots.Time}} for {{.Slots.Name}}. Is that correct?`,
	models.RespConfirmOrder:       `I have {{items .Slots.Items}}, {{if eq .Slots.Fulfillment "delivery"}}delivered to {{.Slots.Address}}{{else}}for pickup{{end}}, for {{.Slots.Name}}. That comes to {{money .Slots.OrderTotal}}. Is that correct?`,
	models.RespConfirmUnclear:     `Sorry, I did not catch that. Is the {{if .Order}}order{{else}}appointment{{end}} correct? Please say yes or no.`,
	models.RespBooked:             `Your appointment is booked. Goodbye.`,
	models.RespOrderPlaced:        `Your order has been placed. {{if eq .Slots.Fulfillment "delivery"}}We will deliver it as soon as possible.{{else}}You can pick it up shortly.{{end}} Goodbye.`,
	models.RespBookingFailed:      `I could not save that. Shall I try again?`,
	models.RespEscalate:           `I will put you through to a colleague.`,
	models.RespEscalateCancel:     `To cancel or move an appointment I will put you through to a colleague.`,
	models.RespAlreadyCompleted:   `Your {{if .Order}}order{{else}}appointment{{end}} has already been saved. Goodbye.`,
	models.RespError:              `Something went wrong. Please try again later.`,
}

// alternatives is shared by the unavailable, outside_hours and in_past replies.
var alternatives = map[string]string{
	"nl": `{{with .Resp.Alternatives}} Ik kan u {{either (clocks .)}} aanbieden. Wat past u?{{else}} Welke andere tijd past u?{{end}}`,
	"en": `{{with .Resp.Alternatives}} I can offer {{either (clocks .)}}. Which suits you?{{else}} Which other time suits you?{{end}}`,
}

var retryPrefix = map[string]string{
	"nl": "Sorry, dat verstond ik niet goed. ",
	"en": "Sorry, I did not quite catch that. ",
}
