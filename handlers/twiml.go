// File: handlers/twiml.go
package handlers

import (
	"bytes"
	"encoding/xml"
)

// Minimal TwiML response builder for the voice webhooks. Only the verbs the
// conversation flow needs; no provider SDK dependency.

type twimlResponse struct {
	XMLName xml.Name `xml:"Response"`
	Verbs   []any    `xml:",any"`
}

type twimlSay struct {
	XMLName xml.Name `xml:"Say"`
	Voice   string   `xml:"voice,attr,omitempty"`
	Text    string   `xml:",chardata"`
}

type twimlGather struct {
	XMLName xml.Name  `xml:"Gather"`
	Input   string    `xml:"input,attr"`
	Action  string    `xml:"action,attr"`
	Method  string    `xml:"method,attr"`
	Timeout int       `xml:"speechTimeout,attr"`
	Say     *twimlSay `xml:"Say,omitempty"`
}

type twimlHangup struct {
	XMLName xml.Name `xml:"Hangup"`
}

type twimlRedirect struct {
	XMLName xml.Name `xml:"Redirect"`
	Method  string   `xml:"method,attr"`
	URL     string   `xml:",chardata"`
}

const speechTimeoutSeconds = 3

// gatherSpeech speaks text and listens for the caller's next utterance,
// posting the transcript to action.
func gatherSpeech(text, action string) twimlResponse {
	return twimlResponse{Verbs: []any{
		twimlGather{
			Input:   "speech",
			Action:  action,
			Method:  "POST",
			Timeout: speechTimeoutSeconds,
			Say:     &twimlSay{Voice: "alice", Text: text},
		},
		// Reached only when the gather times out with no speech.
		twimlRedirect{Method: "POST", URL: "/voice/no-input"},
	}}
}

// sayAndHangup speaks a final line and ends the call.
func sayAndHangup(text string) twimlResponse {
	return twimlResponse{Verbs: []any{
		twimlSay{Voice: "alice", Text: text},
		twimlHangup{},
	}}
}

func renderTwiML(r twimlResponse) (string, error) {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(r); err != nil {
		return "", err
	}
	if err := enc.Flush(); err != nil {
		return "", err
	}
	return buf.String(), nil
}
