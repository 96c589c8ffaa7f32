package runner

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/jvatic/opustags/internal/common"
	"github.com/jvatic/opustags/internal/edit"
	"github.com/jvatic/opustags/internal/editor"
	"github.com/jvatic/opustags/internal/locale"
	"github.com/jvatic/opustags/internal/ogg"
	"github.com/jvatic/opustags/internal/opus"
)

// Job describes what to do with the comment header of a stream.
type Job struct {
	Plan *edit.Plan

	// Conv converts between UTF-8 and the locale; nil leaves text as is.
	Conv *locale.Converter

	// Delim ends each tag in listings and edited files.
	Delim byte

	// ListVendor prints the vendor string instead of the comments.
	ListVendor bool

	// Listing receives the tags in read-only mode.
	Listing io.Writer

	// SaveCover, when set, receives the embedded cover, or nil if there is
	// none. The tags are then not listed.
	SaveCover func(*opus.Picture) error

	// Editor, when set, lets the user edit the comments after Plan has been
	// applied. Source names the input file, next to which the tag file is
	// created.
	Editor *editor.Editor
	Source string
}

type state int

const (
	stateStart state = iota
	stateHeaderSeen
	stateBody
	stateEnd
)

// Process reads an Ogg Opus stream from in and, unless out is nil, writes it
// to out with its comment header transformed by job. When out is nil the
// stream is only read up to the comment header, which is listed.
//
// Audio pages are copied untouched apart from their sequence numbers, which
// shift when the new comment header needs a different number of pages.
func Process(ctx context.Context, in io.Reader, out io.Writer, job *Job) error {
	p := &processor{
		job: job,
		r:   ogg.NewReader(in),
		a:   ogg.NewAssembler(),
	}
	if out != nil {
		p.bw = bufio.NewWriter(out)
		p.w = ogg.NewWriter(p.bw)
	}
	err := p.run(ctx)
	if errors.Is(err, ogg.ErrLostSync) && p.r.PageIndex() == 0 {
		if rs, ok := in.(io.ReadSeeker); ok {
			if format := common.DescribeFormat(rs); format != "" {
				err = fmt.Errorf("%w (input looks like a %s)", err, format)
			}
		}
	}
	return err
}

type processor struct {
	job *Job
	r   *ogg.Reader
	a   *ogg.Assembler
	w   *ogg.Writer
	bw  *bufio.Writer

	state    state
	serialNo uint32
	header   []*ogg.Page // pages of the comment header
	offset   int64       // added to the sequence number of the audio pages
}

func (p *processor) run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		page, err := p.r.NextPage()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}

		done, err := p.handle(ctx, page)
		if err != nil {
			return err
		}
		if done {
			return nil
		}
	}

	switch p.state {
	case stateStart, stateHeaderSeen:
		return ogg.ErrTooFewPackets
	case stateBody:
		log.Warn("the stream is not terminated by an end-of-stream page")
	}
	if p.bw != nil {
		return p.bw.Flush()
	}
	return nil
}

// handle processes one page. It returns true when nothing more needs to be
// read.
func (p *processor) handle(ctx context.Context, page *ogg.Page) (bool, error) {
	switch p.state {
	case stateStart:
		return false, p.handleHead(page)
	case stateHeaderSeen:
		return p.handleTags(ctx, page)
	case stateBody:
		if page.SerialNo() != p.serialNo {
			return false, fmt.Errorf("%w: page %d belongs to stream %08x", ogg.ErrMuxed, page.PageNo(), page.SerialNo())
		}
		if p.offset != 0 {
			page.Renumber(uint32(int64(page.PageNo()) + p.offset))
		}
		if page.EOS() {
			p.state = stateEnd
		}
		return false, p.w.WriteRawPage(page)
	default:
		return false, fmt.Errorf("%w: data after the end of the stream, chained streams are not supported", ogg.ErrContainer)
	}
}

func (p *processor) handleHead(page *ogg.Page) error {
	if !page.BOS() {
		return fmt.Errorf("%w: the first page does not begin a stream", ogg.ErrContainer)
	}
	if err := p.a.Submit(page); err != nil {
		return err
	}
	p.serialNo = page.SerialNo()
	pkt, err := p.a.NextPacket()
	if errors.Is(err, ogg.ErrEndOfPage) {
		return fmt.Errorf("%w: the identification header must be alone on the first page", ogg.ErrContainer)
	}
	if err != nil {
		return err
	}
	head, err := opus.ParseHead(pkt.Data)
	if err != nil {
		return err
	}
	log.Debugf("opus stream %08x: %d channels, %d Hz", p.serialNo, head.Channels, head.SampleRate)
	if _, err := p.a.NextPacket(); (!errors.Is(err, ogg.ErrEndOfPage) && !errors.Is(err, io.EOF)) || p.a.Pending() {
		return fmt.Errorf("%w: the identification header must be alone on the first page", ogg.ErrContainer)
	}
	p.state = stateHeaderSeen
	if p.w != nil {
		return p.w.WriteRawPage(page)
	}
	return nil
}

func (p *processor) handleTags(ctx context.Context, page *ogg.Page) (bool, error) {
	if err := p.a.Submit(page); err != nil {
		return false, err
	}
	if p.w != nil {
		p.header = append(p.header, page.Clone())
	}
	pkt, err := p.a.NextPacket()
	if errors.Is(err, ogg.ErrEndOfPage) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if _, err := p.a.NextPacket(); !errors.Is(err, ogg.ErrEndOfPage) && !errors.Is(err, io.EOF) {
		if err == nil {
			err = fmt.Errorf("%w: the comment header must end its page", ogg.ErrContainer)
		}
		return false, err
	}
	if p.a.Pending() {
		return false, fmt.Errorf("%w: the comment header must end its page", ogg.ErrContainer)
	}

	tags, err := opus.ParseTags(pkt.Data)
	if err != nil {
		return false, err
	}

	if p.job.SaveCover != nil {
		pic, err := opus.ExtractCover(tags)
		if err != nil {
			return false, err
		}
		if err := p.job.SaveCover(pic); err != nil {
			return false, err
		}
	}

	if p.w == nil {
		if p.job.SaveCover != nil {
			return true, nil
		}
		return true, p.list(tags)
	}

	edited := &opus.Tags{
		Vendor:    tags.Vendor,
		Comments:  append([]string(nil), tags.Comments...),
		ExtraData: tags.ExtraData,
	}
	if p.job.Plan != nil {
		p.job.Plan.Apply(edited)
	}
	if p.job.Editor != nil {
		if err := p.edit(ctx, edited); err != nil {
			return false, err
		}
	}

	first, last := p.header[0], p.header[len(p.header)-1]
	if edited.Equal(tags) {
		for _, hp := range p.header {
			if err := p.w.WriteRawPage(hp); err != nil {
				return false, err
			}
		}
	} else {
		p.w.BeginHeader(p.serialNo, first.PageNo())
		out := opus.RenderTags(edited)
		out.EOS = last.EOS()
		p.w.WritePacket(out)
		n, err := p.w.Flush()
		if err != nil {
			return false, err
		}
		log.Debugf("comment header rewritten on %d pages instead of %d", n, len(p.header))
	}
	p.offset = int64(p.w.NextPageNo()) - 1 - int64(last.PageNo())
	p.header = nil

	p.state = stateBody
	if last.EOS() {
		p.state = stateEnd
	}
	return false, nil
}

func (p *processor) edit(ctx context.Context, tags *opus.Tags) error {
	comments := tags.Comments
	if p.job.Conv != nil {
		var err error
		if comments, err = p.job.Conv.ToLocaleAll(comments); err != nil {
			return err
		}
	}
	comments, err := p.job.Editor.Edit(ctx, p.job.Source, comments)
	if err != nil {
		return err
	}
	if p.job.Conv != nil {
		if comments, err = p.job.Conv.FromLocaleAll(comments); err != nil {
			return err
		}
	}
	tags.Comments = comments
	return nil
}

// list prints the vendor, as a comment line, then the comments.
func (p *processor) list(tags *opus.Tags) error {
	vendor, comments := tags.Vendor, tags.Comments
	if p.job.Conv != nil {
		var err error
		if vendor, err = p.job.Conv.ToLocale(vendor); err != nil {
			return err
		}
		if comments, err = p.job.Conv.ToLocaleAll(comments); err != nil {
			return err
		}
	}
	delim := string(p.job.Delim)
	if p.job.ListVendor {
		_, err := io.WriteString(p.job.Listing, vendor+delim)
		return err
	}
	header := "# " + strings.ReplaceAll(vendor, delim, delim+"# ") + delim
	if _, err := io.WriteString(p.job.Listing, header); err != nil {
		return err
	}
	return edit.WriteComments(p.job.Listing, comments, p.job.Delim)
}
