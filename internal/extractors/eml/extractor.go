package eml

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/mail"
	"strings"

	"github.com/custodia-labs/rfqx/internal/core/domain"
	"github.com/custodia-labs/rfqx/internal/core/ports/driven"
	"github.com/custodia-labs/rfqx/internal/extractors"
	"github.com/custodia-labs/rfqx/internal/extractors/html"
	"github.com/custodia-labs/rfqx/internal/extractors/plaintext"
	"github.com/custodia-labs/rfqx/internal/normtext"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// Name is the strategy name of the e-mail extractor.
const Name = "eml"

// maxDepth bounds nested multipart recursion.
const maxDepth = 8

// Extractor handles RFC 822 messages.
type Extractor struct{}

// New creates a new e-mail extractor.
func New() *Extractor {
	return &Extractor{}
}

// Name returns the strategy name.
func (e *Extractor) Name() string {
	return Name
}

// Kind returns the cascade tier.
func (e *Extractor) Kind() domain.StrategyKind {
	return domain.KindFormat
}

// SupportedMIMETypes returns the MIME types this extractor handles.
func (e *Extractor) SupportedMIMETypes() []string {
	return []string{extractors.MIMEEmail}
}

// Priority returns the selection priority.
func (e *Extractor) Priority() int {
	return 50
}

// Extract converts the message headers and body to normalised text.
// Plain text parts are preferred over HTML; CSV attachments become tables.
func (e *Extractor) Extract(ctx context.Context, file *domain.SourceFile) (_ *driven.Extraction, err error) {
	defer extractors.Recover(Name, &err)

	if file == nil {
		return nil, domain.ErrInvalidInput
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	text, err := ToText(file.Content)
	if err != nil {
		return nil, extractors.Failed(Name, err)
	}
	return &driven.Extraction{Text: text, Method: domain.MethodEmail}, nil
}

// ToText parses an RFC 822 message into normalised text.
func ToText(content []byte) (string, error) {
	msg, err := mail.ReadMessage(bytes.NewReader(content))
	if err != nil {
		return "", fmt.Errorf("parse message: %w", err)
	}

	var b normtext.Builder
	for _, h := range []string{"Subject", "From", "Date"} {
		if v := decodeHeader(msg.Header.Get(h)); v != "" {
			b.Line(h + ": " + v)
		}
	}
	b.Line("")

	var body parts
	if err := body.collect(msg.Header, msg.Body, 0); err != nil {
		return "", err
	}
	for _, s := range body.texts() {
		b.Text(s)
		b.Line("")
	}
	for _, t := range body.tables {
		b.Text(t)
		b.Line("")
	}
	return b.String(), nil
}

// header is the subset of a MIME header the walker reads.
type header interface {
	Get(key string) string
}

// parts accumulates the readable content of a message.
type parts struct {
	plain  []string
	html   []string
	tables []string
}

// texts returns plain parts when there are any, HTML parts otherwise.
func (p *parts) texts() []string {
	if len(p.plain) > 0 {
		return p.plain
	}
	return p.html
}

func (p *parts) collect(h header, r io.Reader, depth int) error {
	mediaType, params, err := mime.ParseMediaType(h.Get("Content-Type"))
	if err != nil {
		mediaType = extractors.MIMEPlainText
	}
	r = decodeTransfer(h.Get("Content-Transfer-Encoding"), r)

	if strings.HasPrefix(mediaType, "multipart/") {
		if depth >= maxDepth || params["boundary"] == "" {
			return nil
		}
		mr := multipart.NewReader(r, params["boundary"])
		for {
			part, err := mr.NextPart()
			if errors.Is(err, io.EOF) {
				return nil
			}
			if err != nil {
				// A truncated message keeps what was read so far.
				return nil
			}
			err = p.collect(part.Header, part, depth+1)
			_ = part.Close()
			if err != nil {
				return err
			}
		}
	}

	content, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("read %s part: %w", mediaType, err)
	}

	switch mediaType {
	case extractors.MIMEPlainText:
		if strings.HasSuffix(strings.ToLower(attachmentName(h)), ".csv") {
			return p.addCSV(content)
		}
		p.plain = append(p.plain, plaintext.ToText(content))
	case extractors.MIMEHTML:
		text, err := html.ToText(content)
		if err != nil {
			return err
		}
		p.html = append(p.html, text)
	case extractors.MIMECSV, "text/tab-separated-values":
		return p.addCSV(content)
	}
	return nil
}

func (p *parts) addCSV(content []byte) error {
	text, err := plaintext.CSVToText(content)
	if err != nil {
		return err
	}
	p.tables = append(p.tables, text)
	return nil
}

// attachmentName returns the file name of an attachment part, if any.
func attachmentName(h header) string {
	_, params, err := mime.ParseMediaType(h.Get("Content-Disposition"))
	if err != nil {
		return ""
	}
	return params["filename"]
}

// decodeTransfer undoes the content transfer encoding. multipart removes the
// header of quoted-printable parts it has already decoded.
func decodeTransfer(encoding string, r io.Reader) io.Reader {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "base64":
		return base64.NewDecoder(base64.StdEncoding, &newlineStripper{r: r})
	case "quoted-printable":
		return quotedprintable.NewReader(r)
	default:
		return r
	}
}

// newlineStripper drops CR and LF so base64 bodies wrapped at 76 columns decode.
type newlineStripper struct {
	r io.Reader
}

func (n *newlineStripper) Read(p []byte) (int, error) {
	for {
		c, err := n.r.Read(p)
		out := p[:0]
		for _, b := range p[:c] {
			if b != '\r' && b != '\n' {
				out = append(out, b)
			}
		}
		if len(out) > 0 || err != nil {
			return len(out), err
		}
	}
}

// decodeHeader decodes RFC 2047 encoded words.
func decodeHeader(v string) string {
	if v == "" {
		return ""
	}
	dec := new(mime.WordDecoder)
	decoded, err := dec.DecodeHeader(v)
	if err != nil {
		return strings.TrimSpace(v)
	}
	return strings.TrimSpace(decoded)
}
