// Package normalize converts raw scraped field strings into typed
// record values. It is the single policy surface deciding what counts
// as a clean value: every source's extractor converges here.
package normalize

import (
	"go.uber.org/zap"

	"github.com/alpentrace/harvester/internal/listing"
	"github.com/alpentrace/harvester/internal/metrics"
)

// Pipeline normalizes raw records against the fixed schema table.
type Pipeline struct {
	logger *zap.Logger
}

// New constructs a Pipeline.
func New(logger *zap.Logger) *Pipeline {
	return &Pipeline{logger: logger}
}

// Normalize converts one raw record into a typed record. Field-level
// failures are local: the field stays absent and the rest of the
// record is kept. It reports false when a mandatory field could not be
// parsed at all, in which case the record must be discarded. The input
// is never mutated.
func (p *Pipeline) Normalize(raw listing.RawRecord) (listing.Record, bool) {
	rec := make(listing.Record, len(raw))
	url := raw[listing.FieldURL]

	for _, field := range listing.Schema {
		value, ok := raw[field.Name]
		if !ok {
			continue
		}
		typed, ok := p.serializeField(field, value, url)
		if !ok {
			continue
		}
		rec[field.Name] = typed
	}

	if !rec.Complete() {
		p.logger.Warn("record dropped, mandatory field missing or unparseable",
			zap.String("url", url),
		)
		metrics.RecordDropped()
		return nil, false
	}
	return rec, true
}

// NormalizeAll normalizes a merged batch, keeping only complete records.
func (p *Pipeline) NormalizeAll(raws []listing.RawRecord) []listing.Record {
	records := make([]listing.Record, 0, len(raws))
	for _, raw := range raws {
		rec, ok := p.Normalize(raw)
		if !ok {
			continue
		}
		records = append(records, rec)
	}
	p.logger.Info("normalization finished",
		zap.Int("raw", len(raws)),
		zap.Int("kept", len(records)),
		zap.Int("dropped", len(raws)-len(records)),
	)
	return records
}

func (p *Pipeline) serializeField(field listing.Field, value, url string) (any, bool) {
	switch field.Type {
	case listing.TypeInt:
		n, ok := SerializeInt(value)
		if !ok {
			p.warn("int", field.Name, value, url)
			return nil, false
		}
		return n, true
	case listing.TypeFloat:
		f, ok := SerializeFloat(value)
		if !ok {
			p.warn("float", field.Name, value, url)
			return nil, false
		}
		return f, true
	case listing.TypeBool:
		b, ok := SerializeBool(value)
		if !ok {
			p.warn("bool", field.Name, value, url)
			return nil, false
		}
		return b, true
	case listing.TypeString:
		s, ok := SerializeString(value)
		if !ok {
			p.warn("string", field.Name, value, url)
			return nil, false
		}
		return s, true
	default:
		p.logger.Warn("declared field type not recognised",
			zap.String("field", field.Name),
			zap.Stringer("type", field.Type),
			zap.String("url", url),
		)
		return nil, false
	}
}

func (p *Pipeline) warn(kind, field, value, url string) {
	p.logger.Warn("value not recognised by serializer",
		zap.String("serializer", kind),
		zap.String("field", field),
		zap.String("value", value),
		zap.String("url", url),
	)
}
