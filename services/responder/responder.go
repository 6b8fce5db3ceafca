package responder

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"phonedesk/models"

	"go.uber.org/zap"
)

// Context carries what a reply needs besides the slots.
type Context struct {
	Locale   string
	Business string
	Flow     models.FlowKind
}

type view struct {
	Business string
	Order    bool
	Slots    models.Slots
	Resp     models.Response
}

// retried codes get an apology in front when asked again
var retried = map[models.ResponseCode]bool{
	models.RespAskService:     true,
	models.RespAskDate:        true,
	models.RespAskTime:        true,
	models.RespAskName:        true,
	models.RespAskItems:       true,
	models.RespAskFulfillment: true,
	models.RespAskAddress:     true,
	models.RespAnythingElse:   true,
}

// fixed replies do not depend on slots and can be synthesized ahead of calls.
var fixed = []models.ResponseCode{
	models.RespGreeting,
	models.RespAskService, models.RespAskDate, models.RespAskTime, models.RespAskName,
	models.RespAskItems, models.RespAskFulfillment, models.RespAskAddress, models.RespAskMoreItems,
	models.RespServiceNotFound, models.RespNoDelivery, models.RespConfirmUnclear,
	models.RespBooked, models.RespBookingFailed, models.RespEscalate, models.RespEscalateCancel,
	models.RespAlreadyCompleted, models.RespError,
}

// Responder renders response codes into sanitized spoken text.
type Responder struct {
	sets   map[string]*template.Template
	logger *zap.Logger
}

// New parses the templates of every locale.
func New(logger *zap.Logger) (*Responder, error) {
	r := &Responder{sets: map[string]*template.Template{}, logger: logger}
	for locale, texts := range map[string]map[models.ResponseCode]string{"nl": dutch, "en": english} {
		f := newFormatter(locale)
		root := template.New(locale).Option("missingkey=zero").Funcs(template.FuncMap{
			"money":   f.money,
			"date":    f.date,
			"weekday": f.weekday,
			"clock":   f.clock,
			"clocks":  f.clocks,
			"count":   f.count,
			"items":   f.items,
			"list":    f.list,
			"either":  f.either,
			"lower":   strings.ToLower,
		})
		if _, err := root.New("alts").Parse(alternatives[locale]); err != nil {
			return nil, fmt.Errorf("parse %s alternatives: %w", locale, err)
		}
		for code, text := range texts {
			if _, err := root.New(string(code)).Parse(text); err != nil {
				return nil, fmt.Errorf("parse %s/%s: %w", locale, code, err)
			}
		}
		r.sets[locale] = root
	}
	return r, nil
}

// Locale maps a business locale such as "nl-NL" onto a template set.
func Locale(tag string) string {
	if strings.HasPrefix(strings.ToLower(tag), "en") {
		return "en"
	}
	return "nl"
}

// Render produces the text for one response. Rendering never fails: a broken
// template falls back to the generic error reply.
func (r *Responder) Render(resp models.Response, slots models.Slots, c Context) string {
	locale := Locale(c.Locale)
	set := r.sets[locale]
	data := view{Business: c.Business, Order: c.Flow == models.FlowOrder, Slots: slots, Resp: resp}

	var buf bytes.Buffer
	if resp.Retry && retried[resp.Code] {
		buf.WriteString(retryPrefix[locale])
	}
	tmpl := set.Lookup(string(resp.Code))
	if tmpl == nil {
		r.logger.Warn("No template for response", zap.String("code", string(resp.Code)), zap.String("locale", locale))
		tmpl = set.Lookup(string(models.RespError))
	}
	if err := tmpl.Execute(&buf, data); err != nil {
		r.logger.Error("Failed to render response", zap.String("code", string(resp.Code)), zap.Error(err))
		buf.Reset()
		_ = set.Lookup(string(models.RespError)).Execute(&buf, data)
	}
	return Sanitize(buf.String())
}

// Fixed renders the slot-independent replies for a business, for pre-warming
// the speech cache.
func (r *Responder) Fixed(c Context) []string {
	out := make([]string, 0, len(fixed))
	for _, code := range fixed {
		out = append(out, r.Render(models.Response{Code: code}, models.Slots{}, c))
	}
	return out
}
