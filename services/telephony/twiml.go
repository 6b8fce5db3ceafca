// File: services/telephony/twiml.go
package telephony

import (
	"encoding/xml"
	"strings"
)

type twimlResponse struct {
	XMLName xml.Name      `xml:"Response"`
	Connect *twimlConnect `xml:"Connect,omitempty"`
	Dial    *twimlDial    `xml:"Dial,omitempty"`
	Hangup  *struct{}     `xml:"Hangup,omitempty"`
}

type twimlConnect struct {
	Stream twimlStream `xml:"Stream"`
}

type twimlStream struct {
	URL    string       `xml:"url,attr"`
	Params []twimlParam `xml:"Parameter"`
}

type twimlParam struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value,attr"`
}

type twimlDial struct {
	Number string `xml:"Number"`
}

func render(r twimlResponse) (string, error) {
	out, err := xml.Marshal(r)
	if err != nil {
		return "", err
	}
	return xml.Header + string(out), nil
}

// StreamTwiML connects the call to the media websocket at wsURL. Parameters
// arrive in the stream's start message, in the given order.
func StreamTwiML(wsURL string, params ...[2]string) (string, error) {
	s := twimlStream{URL: wsURL}
	for _, p := range params {
		s.Params = append(s.Params, twimlParam{Name: p[0], Value: p[1]})
	}
	return render(twimlResponse{Connect: &twimlConnect{Stream: s}})
}

// DialTwiML forwards the call to a phone number.
func DialTwiML(number string) (string, error) {
	return render(twimlResponse{Dial: &twimlDial{Number: number}})
}

// HangupTwiML ends the call straight away.
func HangupTwiML() string {
	out, _ := render(twimlResponse{Hangup: &struct{}{}})
	return out
}

// MediaURL turns the public base URL into the media websocket address.
func MediaURL(publicBaseURL, path string) string {
	base := strings.TrimRight(publicBaseURL, "/")
	switch {
	case strings.HasPrefix(base, "https://"):
		base = "wss://" + strings.TrimPrefix(base, "https://")
	case strings.HasPrefix(base, "http://"):
		base = "ws://" + strings.TrimPrefix(base, "http://")
	}
	return base + path
}
