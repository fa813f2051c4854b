package autovit

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/lukman83/autovit-sync/internal/apperr"
)

const payloadSelector = `script#__NEXT_DATA__`

var (
	// ErrPayloadNotFound means the page carries no embedded advert data. The
	// layout changed, the request was blocked, or the URL is not an advert.
	ErrPayloadNotFound = apperr.New(apperr.KindPayloadShape, "Nu am găsit payload-ul Autovit (__NEXT_DATA__).")

	errAdvertMissing = apperr.New(apperr.KindPayloadShape, "Nu am putut extrage anunțul din pagina Autovit.")
)

// Advert is the advert sub-tree of a page payload together with its
// original bytes.
type Advert struct {
	Node
	Raw json.RawMessage
}

// ExtractPayload returns the JSON text of the embedded page data script.
// It never returns a partially parsed value.
func ExtractPayload(html string) (json.RawMessage, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, apperr.Wrap(apperr.KindPayloadShape, ErrPayloadNotFound.Message, err)
	}

	text := strings.TrimSpace(doc.Find(payloadSelector).First().Text())
	if text == "" {
		return nil, ErrPayloadNotFound
	}
	if !json.Valid([]byte(text)) {
		return nil, apperr.Wrap(apperr.KindPayloadShape, ErrPayloadNotFound.Message, errors.New("embedded payload is not valid json"))
	}
	return json.RawMessage(text), nil
}

// ExtractAdvert returns the advert found at props.pageProps.advert.
func ExtractAdvert(html string) (*Advert, error) {
	payload, err := ExtractPayload(html)
	if err != nil {
		return nil, err
	}

	var envelope struct {
		Props struct {
			PageProps struct {
				Advert json.RawMessage `json:"advert"`
			} `json:"pageProps"`
		} `json:"props"`
	}
	if err := json.Unmarshal(payload, &envelope); err != nil {
		// props or pageProps with an unexpected type
		return nil, apperr.Wrap(apperr.KindPayloadShape, errAdvertMissing.Message, err)
	}

	raw := envelope.Props.PageProps.Advert
	if len(raw) == 0 || string(raw) == "null" {
		return nil, errAdvertMissing
	}
	node, err := ParseNode(raw)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindPayloadShape, errAdvertMissing.Message, err)
	}
	if !node.IsObject() {
		return nil, errAdvertMissing
	}
	return &Advert{Node: node, Raw: raw}, nil
}
