package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"
)

// Domain prefixes for content-addressed identity.
// The version suffix allows a future algorithm migration.
const (
	DomainGranule = "tgis/granule/v1"
	DomainDataset = "tgis/dataset/v1"
	DomainSample  = "tgis/sample/v1"
)

// objectNamespace seeds name-based object IDs.
var objectNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://tgis/object"))

// hashWithDomain computes SHA256(domain + 0x00 + data).
// The null separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// ObjectID returns a deterministic name-based UUID (version 5) for a map
// registered without an explicit id. The same dataset and start always
// yield the same id.
func ObjectID(datasetID string, start Point) string {
	name := datasetID + "\x00" + string(start.Type()) + "\x00" + start.String()
	return uuid.NewSHA1(objectNamespace, []byte(name)).String()
}

// extentCanonical converts an extent into canonical form. Relative points
// are encoded as integers, absolute points as strings.
func extentCanonical(e Extent) map[string]any {
	enc := func(p Point) any {
		if p.Type() == TypeRelative {
			return p.Value()
		}
		return p.String()
	}
	m := map[string]any{
		"start": enc(e.Start()),
		"end":   enc(e.End()),
	}
	if e.Unit() != UnitNone {
		m["unit"] = string(e.Unit())
	}
	return m
}

func bboxCanonical(b *BBox) map[string]any {
	return map[string]any{
		"north": ftoa(b.North),
		"south": ftoa(b.South),
		"east":  ftoa(b.East),
		"west":  ftoa(b.West),
	}
}

// GranuleFingerprint computes the content hash of a granule: its extent,
// count and the ordered member IDs of every dataset. Payloads are excluded.
func GranuleFingerprint(g Granule) (string, error) {
	members := make([]any, len(g.Members))
	for i, m := range g.Members {
		ids := make([]string, len(m.Objects))
		for j, obj := range m.Objects {
			ids[j] = obj.ID
		}
		members[i] = map[string]any{
			"dataset": m.DatasetID,
			"objects": ids,
		}
	}
	obj := map[string]any{
		"extent":  extentCanonical(g.Extent),
		"count":   g.Count,
		"members": members,
	}
	canonical, err := MarshalCanonical(obj)
	if err != nil {
		return "", fmt.Errorf("GranuleFingerprint: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainGranule, canonical), nil
}

// DatasetFingerprint computes the content hash of a dataset definition.
func DatasetFingerprint(d Dataset) (string, error) {
	objs := make([]any, len(d.Objects))
	for i, o := range d.Objects {
		m := map[string]any{
			"id":     o.ID,
			"extent": extentCanonical(o.Extent),
		}
		if o.Spatial != nil {
			m["bbox"] = bboxCanonical(o.Spatial)
		}
		objs[i] = m
	}
	obj := map[string]any{
		"id":            d.ID,
		"temporal_type": string(d.Type),
		"unit":          string(d.Unit),
		"granularity":   d.Granularity,
		"objects":       objs,
		"object_count":  len(d.Objects),
	}
	canonical, err := MarshalCanonical(obj)
	if err != nil {
		return "", fmt.Errorf("DatasetFingerprint: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainDataset, canonical), nil
}

// SampleFingerprint identifies one sampling run: the canonical expression,
// the fingerprints of its input datasets in argument order and the
// fingerprints of the granules it produced.
func SampleFingerprint(expression string, datasets, granules []string) (string, error) {
	obj := map[string]any{
		"expression": expression,
		"datasets":   datasets,
		"granules":   granules,
	}
	canonical, err := MarshalCanonical(obj)
	if err != nil {
		return "", fmt.Errorf("SampleFingerprint: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainSample, canonical), nil
}

// MustGranuleFingerprint is like GranuleFingerprint but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustGranuleFingerprint(g Granule) string {
	h, err := GranuleFingerprint(g)
	if err != nil {
		panic(err)
	}
	return h
}
