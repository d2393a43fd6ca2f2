/*package foamio contains functions for reading and writing the parts of an
OpenFOAM case that foamtonumpy needs: the polyMesh, the list of time
directories, and volVectorFields. Both ascii and binary files are supported,
as are gzip-compressed files.

Every OpenFOAM file starts with a FoamFile header, e.g.

   FoamFile
   {
       version     2.0;
       format      binary;
       arch        "LSB;label=32;scalar=64";
       class       volVectorField;
       location    "0.1";
       object      U;
   }

The arch entry tells you how the binary payloads of lists are encoded. If it
is missing, LSB ordering, 32-bit labels and 64-bit scalars are assumed, which
is what OpenFOAM itself does.
*/
package foamio

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"
)

// Format is the encoding used by the data sections of a file.
type Format int

const (
	ASCII Format = iota
	Binary
)

func (f Format) String() string {
	switch f {
	case ASCII:
		return "ascii"
	case Binary:
		return "binary"
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

// ParseFormat converts "ascii" or "binary" to a Format.
func ParseFormat(s string) (Format, error) {
	switch s {
	case "ascii":
		return ASCII, nil
	case "binary":
		return Binary, nil
	}
	return ASCII, fmt.Errorf("'%s' is not a valid format. Only 'ascii' and "+
		"'binary' are valid.", s)
}

// Header contains the FoamFile header information of a single file.
type Header struct {
	Version, Class, Location, Object, Note string
	Format                                 Format
	// Order, LabelSize, and ScalarSize describe binary payloads. Sizes are
	// given in bytes.
	Order                 binary.ByteOrder
	LabelSize, ScalarSize int
}

// defaultHeader returns the header values OpenFOAM assumes when entries are
// missing.
func defaultHeader() *Header {
	return &Header{
		Version: "2.0", Format: ASCII,
		Order: binary.LittleEndian, LabelSize: 4, ScalarSize: 8,
	}
}

// Arch returns the arch string describing hd's binary encoding.
func (hd *Header) Arch() string {
	order := "LSB"
	if hd.Order == binary.BigEndian {
		order = "MSB"
	}
	return fmt.Sprintf("%s;label=%d;scalar=%d",
		order, 8*hd.LabelSize, 8*hd.ScalarSize)
}

// readHeader reads the FoamFile dictionary at the start of a file.
func readHeader(t *tokenizer) (*Header, error) {
	tok, err := t.next()
	if err != nil {
		return nil, err
	}
	if tok.kind != wordToken || tok.text != "FoamFile" {
		return nil, t.errorf(tok.pos, "expected a 'FoamFile' header, but "+
			"found %s", tok)
	}
	if err := t.expect('{'); err != nil {
		return nil, err
	}

	dict, err := t.readDict()
	if err != nil {
		return nil, err
	}

	hd := defaultHeader()
	for key, value := range dict {
		text := joinTokens(value)
		switch key {
		case "version":
			hd.Version = text
		case "format":
			hd.Format, err = ParseFormat(text)
			if err != nil {
				return nil, fmt.Errorf("%s: %s", t.name, err.Error())
			}
		case "arch":
			err = parseArch(text, hd)
			if err != nil {
				return nil, fmt.Errorf("%s: %s", t.name, err.Error())
			}
		case "class":
			hd.Class = text
		case "location":
			hd.Location = text
		case "object":
			hd.Object = text
		case "note":
			hd.Note = text
		}
	}

	return hd, nil
}

// parseArch parses an arch string like "LSB;label=32;scalar=64" into hd.
func parseArch(arch string, hd *Header) error {
	for _, part := range strings.Split(arch, ";") {
		part = strings.TrimSpace(part)
		switch {
		case part == "":
		case part == "LSB":
			hd.Order = binary.LittleEndian
		case part == "MSB":
			hd.Order = binary.BigEndian
		case strings.HasPrefix(part, "label="):
			bits, err := strconv.Atoi(strings.TrimPrefix(part, "label="))
			if err != nil || (bits != 32 && bits != 64) {
				return fmt.Errorf("The arch string '%s' has an invalid label "+
					"size. Only 32 and 64 are supported.", arch)
			}
			hd.LabelSize = bits / 8
		case strings.HasPrefix(part, "scalar="):
			bits, err := strconv.Atoi(strings.TrimPrefix(part, "scalar="))
			if err != nil || (bits != 32 && bits != 64) {
				return fmt.Errorf("The arch string '%s' has an invalid scalar "+
					"size. Only 32 and 64 are supported.", arch)
			}
			hd.ScalarSize = bits / 8
		default:
			return fmt.Errorf("The arch string '%s' contains the "+
				"unrecognized element '%s'.", arch, part)
		}
	}
	return nil
}
