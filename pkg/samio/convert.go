package samio

import (
	"fmt"

	"github.com/biogo/hts/sam"

	"github.com/ava-labs/readreducer/pkg/reads"
)

var (
	tagRG = sam.NewTag("RG")
	tagOQ = sam.NewTag("OQ")
	tagNM = sam.NewTag("NM")
	tagMD = sam.NewTag("MD")
)

// missingQual fills Record.Qual when the file stores no qualities ("*").
const missingQual = 0xff

// FromRecord converts a biogo record to a Read. Positions become 1-based.
func FromRecord(rec *sam.Record) reads.Read {
	r := reads.Read{
		Name:           rec.Name,
		RefID:          rec.Ref.ID(),
		Start:          rec.Pos + 1,
		Cigar:          append(sam.Cigar(nil), rec.Cigar...),
		Bases:          rec.Seq.Expand(),
		MapQ:           rec.MapQ,
		Flags:          rec.Flags,
		MateRefID:      rec.MateRef.ID(),
		MateStart:      rec.MatePos + 1,
		TemplateLength: rec.TempLen,
	}
	if rec.Ref != nil {
		r.Contig = rec.Ref.Name()
	}
	if !allMissing(rec.Qual) {
		r.Quals = append([]byte(nil), rec.Qual...)
	}

	for _, aux := range rec.AuxFields {
		switch aux.Tag() {
		case tagRG:
			r.ReadGroup, _ = aux.Value().(string)
		case tagMD:
			r.Optional.MD, _ = aux.Value().(string)
		case tagOQ:
			if s, ok := aux.Value().(string); ok {
				oq := []byte(s)
				for i := range oq {
					oq[i] -= 33
				}
				r.Optional.OriginalQuals = oq
			}
		case tagNM:
			if nm, ok := auxInt(aux.Value()); ok {
				r.Optional.EditDistance = &nm
			}
		}
	}
	return r
}

// ToRecord converts r back to a biogo record using the references of h.
func ToRecord(r reads.Read, h *sam.Header) (*sam.Record, error) {
	refs := h.Refs()
	ref, err := lookupRef(refs, r.RefID)
	if err != nil {
		return nil, fmt.Errorf("read %q: %w", r.Name, err)
	}
	mateRef, err := lookupRef(refs, r.MateRefID)
	if err != nil {
		return nil, fmt.Errorf("read %q mate: %w", r.Name, err)
	}

	var aux []sam.Aux
	add := func(tag sam.Tag, v any) error {
		a, err := sam.NewAux(tag, v)
		if err != nil {
			return fmt.Errorf("read %q: %s tag: %w", r.Name, tag, err)
		}
		aux = append(aux, a)
		return nil
	}
	if r.ReadGroup != "" {
		if err := add(tagRG, r.ReadGroup); err != nil {
			return nil, err
		}
	}
	if len(r.Optional.OriginalQuals) > 0 {
		oq := make([]byte, len(r.Optional.OriginalQuals))
		for i, q := range r.Optional.OriginalQuals {
			oq[i] = q + 33
		}
		if err := add(tagOQ, string(oq)); err != nil {
			return nil, err
		}
	}
	if r.Optional.EditDistance != nil {
		if err := add(tagNM, int32(*r.Optional.EditDistance)); err != nil {
			return nil, err
		}
	}
	if r.Optional.MD != "" {
		if err := add(tagMD, r.Optional.MD); err != nil {
			return nil, err
		}
	}

	quals := r.Quals
	if len(quals) == 0 && len(r.Bases) > 0 {
		quals = make([]byte, len(r.Bases))
		for i := range quals {
			quals[i] = missingQual
		}
	}
	rec, err := sam.NewRecord(r.Name, ref, mateRef, r.Start-1, r.MateStart-1, r.TemplateLength, r.MapQ,
		r.Cigar, r.Bases, quals, aux)
	if err != nil {
		return nil, fmt.Errorf("read %q: %w", r.Name, err)
	}
	rec.Flags = r.Flags
	return rec, nil
}

func lookupRef(refs []*sam.Reference, id int) (*sam.Reference, error) {
	if id < 0 {
		return nil, nil
	}
	if id >= len(refs) {
		return nil, fmt.Errorf("reference id %d not in header (%d references)", id, len(refs))
	}
	return refs[id], nil
}

func allMissing(q []byte) bool {
	for _, b := range q {
		if b != missingQual {
			return false
		}
	}
	return true
}

func auxInt(v any) (int, bool) {
	switch n := v.(type) {
	case int8:
		return int(n), true
	case uint8:
		return int(n), true
	case int16:
		return int(n), true
	case uint16:
		return int(n), true
	case int32:
		return int(n), true
	case uint32:
		return int(n), true
	case int:
		return n, true
	}
	return 0, false
}
