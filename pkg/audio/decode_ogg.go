package audio

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	"layeh.com/gopus"
)

// Opus always decodes at 48 kHz; 120 ms is the longest legal packet.
const (
	opusSampleRate   = 48000
	opusMaxFrameSize = opusSampleRate * 120 / 1000
)

// errNotOpus signals an Ogg stream whose first packet is not an Opus
// identification header (e.g. Vorbis). Callers fall back to ffmpeg.
var errNotOpus = errors.New("audio: ogg stream is not opus")

// decodeOggOpus demuxes an Ogg container and decodes its Opus packets.
func decodeOggOpus(data []byte) ([]float32, Format, error) {
	packets, err := oggPackets(data)
	if err != nil {
		return nil, Format{}, err
	}
	if len(packets) == 0 || !bytes.HasPrefix(packets[0], []byte("OpusHead")) {
		return nil, Format{}, errNotOpus
	}

	head := packets[0]
	if len(head) < 19 {
		return nil, Format{}, fmt.Errorf("%w: short OpusHead", ErrDecode)
	}
	channels := int(head[9])
	preSkip := int(binary.LittleEndian.Uint16(head[10:12]))
	if channels < 1 || channels > 2 {
		// Multistream mappings need libopus' multistream API.
		return nil, Format{}, errNotOpus
	}

	dec, err := gopus.NewDecoder(opusSampleRate, channels)
	if err != nil {
		return nil, Format{}, fmt.Errorf("audio: create opus decoder: %w", err)
	}

	var out []float32
	// packets[1] is OpusTags.
	for _, pkt := range packets[min(2, len(packets)):] {
		if len(pkt) == 0 {
			continue
		}
		pcm, err := dec.Decode(pkt, opusMaxFrameSize, false)
		if err != nil {
			return nil, Format{}, fmt.Errorf("%w: opus packet: %v", ErrDecode, err)
		}
		out = append(out, Int16ToFloat(pcm)...)
	}

	skip := preSkip * channels
	if skip > len(out) {
		skip = len(out)
	}
	return out[skip:], Format{SampleRate: opusSampleRate, Channels: channels}, nil
}

// oggPackets reassembles the logical packets of the first bitstream in an
// Ogg file. Pages of other serial numbers are ignored.
func oggPackets(data []byte) ([][]byte, error) {
	var (
		packets [][]byte
		partial []byte
		serial  uint32
		first   = true
	)
	for off := 0; off < len(data); {
		if len(data)-off < 27 || !bytes.Equal(data[off:off+4], []byte("OggS")) {
			return nil, fmt.Errorf("%w: bad ogg page at offset %d", ErrDecode, off)
		}
		hdr := data[off : off+27]
		pageSerial := binary.LittleEndian.Uint32(hdr[14:18])
		nsegs := int(hdr[26])
		if len(data)-off < 27+nsegs {
			return nil, fmt.Errorf("%w: truncated ogg segment table", ErrDecode)
		}
		table := data[off+27 : off+27+nsegs]
		body := off + 27 + nsegs

		var size int
		for _, l := range table {
			size += int(l)
		}
		if len(data)-body < size {
			return nil, fmt.Errorf("%w: truncated ogg page", ErrDecode)
		}

		if first {
			serial, first = pageSerial, false
		}
		if pageSerial == serial {
			pos := body
			for _, l := range table {
				partial = append(partial, data[pos:pos+int(l)]...)
				pos += int(l)
				if l < 255 {
					packets = append(packets, partial)
					partial = nil
				}
			}
		}
		off = body + size
	}
	if len(partial) > 0 {
		packets = append(packets, partial)
	}
	return packets, nil
}
