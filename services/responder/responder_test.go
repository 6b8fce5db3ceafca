package responder

import (
	"testing"

	"phonedesk/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newResponder(t *testing.T) *Responder {
	t.Helper()
	r, err := New(zap.NewNop())
	require.NoError(t, err)
	return r
}

var (
	nl = Context{Locale: "nl-NL", Business: "Snackbar De Hoek", Flow: models.FlowOrder}
	en = Context{Locale: "en", Business: "Salon Mooi", Flow: models.FlowAppointment}
)

func orderSlots() models.Slots {
	return models.Slots{
		Items: []models.OrderLine{{
			ItemID: "grote-friet", Name: "Grote friet", Quantity: 2, UnitPrice: 3.5,
			Modifiers: []models.Modifier{{ID: "mayo", Name: "Mayonaise", Price: 0.5}},
		}},
		ItemsDone:   true,
		Fulfillment: models.FulfillmentPickup,
		Name:        "Jan",
	}
}

func appointmentSlots() models.Slots {
	return models.Slots{Service: "Knipbeurt", Date: "2026-03-05", Time: "14:30", Name: "Jan"}
}

func TestRenderConfirmations(t *testing.T) {
	r := newResponder(t)
	cases := []struct {
		name  string
		code  models.ResponseCode
		slots models.Slots
		c     Context
		want  string
	}{
		{"order nl", models.RespConfirmOrder, orderSlots(), nl,
			"Ik noteer twee grote friet met mayonaise, om af te halen, op naam van Jan. Dat is samen €8,00. Klopt dat?"},
		{"order en", models.RespConfirmOrder, orderSlots(), Context{Locale: "en", Flow: models.FlowOrder},
			"I have two grote friet with mayonaise, for pickup, for Jan. That comes to €8.00. Is that correct?"},
		{"appointment nl", models.RespConfirmAppointment, appointmentSlots(), nl,
			"Ik noteer knipbeurt op donderdag 5 maart om 14.30 uur op naam van Jan. Klopt dat?"},
		{"appointment en", models.RespConfirmAppointment, appointmentSlots(), en,
			"I have knipbeurt on Thursday 5 March at 2:30 pm for Jan. Is that correct?"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, r.Render(models.Response{Code: tc.code}, tc.slots, tc.c))
		})
	}
}

func TestRenderAlternatives(t *testing.T) {
	r := newResponder(t)
	// a refused value is cleared from the slots and read back from the response
	slots := models.Slots{Date: "2026-03-05"}

	got := r.Render(models.Response{Code: models.RespUnavailable, Rejected: "14:00", Alternatives: []string{"13:30", "14:30"}}, slots, nl)
	assert.Equal(t, "Om 14 uur is het helaas al bezet. Ik kan u 13.30 uur of 14.30 uur aanbieden. Wat past u?", got)

	got = r.Render(models.Response{Code: models.RespUnavailable, Rejected: "14:00"}, slots, nl)
	assert.Equal(t, "Om 14 uur is het helaas al bezet. Welke andere tijd past u?", got)

	got = r.Render(models.Response{
		Code:         models.RespOutsideHours,
		Hours:        &models.HoursWindow{Open: "09:00", Close: "17:30"},
		Alternatives: []string{"17:00"},
	}, slots, en)
	assert.Equal(t, "We are open from 9 am to 5:30 pm that day. I can offer 5 pm. Which suits you?", got)

	got = r.Render(models.Response{Code: models.RespClosed, Rejected: "2026-03-08"}, models.Slots{}, nl)
	assert.Equal(t, "Op zondag zijn we gesloten. Welke andere dag past u?", got)

	got = r.Render(models.Response{Code: models.RespClosed, Rejected: "2026-03-08"}, models.Slots{}, en)
	assert.Equal(t, "We are closed on Sunday. Which other day suits you?", got)
}

func TestRenderRetryPrefix(t *testing.T) {
	r := newResponder(t)
	assert.Equal(t, "Sorry, dat verstond ik niet goed. Hoe laat wilt u komen?",
		r.Render(models.Response{Code: models.RespAskTime, Retry: true}, models.Slots{}, nl))
	assert.Equal(t, "Hoe laat wilt u komen?",
		r.Render(models.Response{Code: models.RespAskTime}, models.Slots{}, nl))
	// replies that already apologise are not prefixed
	assert.Equal(t, "Sorry, pizza kan ik niet vinden op de kaart. Kunt u het nog een keer zeggen?",
		r.Render(models.Response{Code: models.RespItemNotFound, Items: []string{"pizza"}, Retry: true}, models.Slots{}, nl))
}

func TestRenderGreetingAndFallback(t *testing.T) {
	r := newResponder(t)
	assert.Equal(t, "Goedendag, u spreekt met Snackbar De Hoek. Wat wilt u bestellen?",
		r.Render(models.Response{Code: models.RespGreeting}, models.Slots{}, nl))
	assert.Equal(t, "Something went wrong. Please try again later.",
		r.Render(models.Response{Code: "no_such_code"}, models.Slots{}, en))
}

func TestFixedPhrases(t *testing.T) {
	r := newResponder(t)
	phrases := r.Fixed(nl)
	assert.Len(t, phrases, len(fixed))
	for _, p := range phrases {
		assert.NotEmpty(t, p)
		assert.NotContains(t, p, "<no value>")
	}
}

func TestSanitize(t *testing.T) {
	cases := map[string]string{
		"Geweldig! Uw afspraak staat genoteerd!": "Uw afspraak staat genoteerd.",
		"Perfect, I have two cola.":              "I have two cola.",
		"Dat komt super uit!!":                   "Dat komt uit.",
		"We gaan naar de supermarkt.":            "We gaan naar de supermarkt.",
		"Absolutely!  No problem at all.":        "",
	}
	for in, want := range cases {
		assert.Equal(t, want, Sanitize(in), in)
	}
}

func TestFormatter(t *testing.T) {
	f := newFormatter("nl")
	assert.Equal(t, "€1.234,50", f.money(1234.5))
	assert.Equal(t, "drie", f.count(3))
	assert.Equal(t, "13", f.count(13))
	assert.Equal(t, "a, b en c", f.list([]string{"a", "b", "c"}))
	assert.Equal(t, "een cola zonder ijs", f.line(models.OrderLine{Name: "Cola", Quantity: 1,
		Modifiers: []models.Modifier{{Name: "ijs", Without: true}}}))

	e := newFormatter("en")
	assert.Equal(t, "€1,234.50", e.money(1234.5))
	assert.Equal(t, "Thursday 5 March", e.date("2026-03-05"))
	assert.Equal(t, "9 am", e.clock("09:00"))
}
