package twilio

import (
	"encoding/xml"

	"github.com/rotisserie/eris"
)

// Response is the root of a TwiML document.
type Response struct {
	XMLName xml.Name `xml:"Response"`
	Connect *Connect `xml:"Connect,omitempty"`
}

// Connect bridges the call to a media stream.
type Connect struct {
	Stream Stream `xml:"Stream"`
}

// Stream names the websocket endpoint that receives call audio.
type Stream struct {
	URL        string      `xml:"url,attr"`
	Parameters []Parameter `xml:"Parameter"`
}

// Parameter is a custom key/value passed to the stream on start.
type Parameter struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value,attr"`
}

// StreamConnect returns a TwiML document connecting the call audio to
// streamURL with the given parameters, in order.
func StreamConnect(streamURL string, params ...Parameter) ([]byte, error) {
	doc := Response{
		Connect: &Connect{
			Stream: Stream{URL: streamURL, Parameters: params},
		},
	}
	body, err := xml.Marshal(doc)
	if err != nil {
		return nil, eris.Wrap(err, "twilio: marshal twiml")
	}
	return append([]byte(`<?xml version="1.0" encoding="UTF-8"?>`), body...), nil
}
