// Package fallback produces canned operator replies when the external
// collaborator cannot be reached.
package fallback

import (
	"strings"
)

// Reply is the canned response for one counterparty message, plus any
// synthetic indicator it plants and whether it ends the investigation.
type Reply struct {
	Text          string
	PaymentHandle string
	Link          string
	Phone         string
	Terminal      bool
}

type rule struct {
	cues  []string
	reply Reply
}

// Rules are checked in order; the first matching cue wins.
var rules = []rule{
	{
		cues: []string{"upi", "@"},
		reply: Reply{
			Text:          "Is this the right UPI? Should I pay now?",
			PaymentHandle: "secure.pay@okaxis",
		},
	},
	{
		cues: []string{"link", "http"},
		reply: Reply{
			Text: "The link isn't opening on my phone. Should I use a different browser?",
			Link: "https://secure-verification-portal.net/login",
		},
	},
	{
		cues: []string{"number", "call"},
		reply: Reply{
			Text:  "Can I call this number to verify? What's your name?",
			Phone: "+91 98765 43210",
		},
	},
	{
		cues: []string{"done", "sent", "paid"},
		reply: Reply{
			Text:     "I sent it. When will I get the benefits?",
			Terminal: true,
		},
	},
}

var probe = Reply{Text: "So how does this work? Is there a registration fee?"}

// Respond picks the canned reply for text.
func Respond(text string) Reply {
	lower := strings.ToLower(text)
	for _, r := range rules {
		for _, cue := range r.cues {
			if strings.Contains(lower, cue) {
				return r.reply
			}
		}
	}
	return probe
}
