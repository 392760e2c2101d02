package catalog

import (
	"github.com/go-faster/jx"

	"github.com/xenking/retail-catalog/internal/domain/product"
)

// decodeAttr decodes the kind tag and variant attributes of a product.
// Unknown keys are skipped.
func decodeAttr(d *jx.Decoder, key string, p *ProductRecord) error {
	var err error
	switch key {
	case "kind":
		var s string
		if s, err = d.Str(); err == nil {
			p.Kind, err = product.ParseKind(s)
		}
	case "efficiency":
		p.Smartphone.Efficiency, err = decodeDecimal(d)
	case "model":
		p.Smartphone.Model, err = d.Str()
	case "memory":
		p.Smartphone.Memory, err = decodeInt(d)
	case "color":
		var s string
		if s, err = d.Str(); err == nil {
			p.Smartphone.Color = s
			p.LawnGrass.Color = s
		}
	case "country":
		p.LawnGrass.Country, err = d.Str()
	case "germination_period":
		p.LawnGrass.GerminationPeriod, err = d.Str()
	default:
		err = d.Skip()
	}
	return err
}

// DecodeAttrs fills the variant attributes of p from a JSON object as
// produced by EncodeAttrs.
func DecodeAttrs(data []byte, p *ProductRecord) error {
	if len(data) == 0 {
		return nil
	}
	return jx.DecodeBytes(data).Obj(func(d *jx.Decoder, key string) error {
		if err := decodeAttr(d, key, p); err != nil {
			return &FieldError{Path: "attrs." + key, Err: err}
		}
		return nil
	})
}

// EncodeAttrs encodes the variant attributes of item as a JSON object. The
// base product yields an empty object.
func EncodeAttrs(item product.Item) []byte {
	var e jx.Encoder
	e.Obj(func(e *jx.Encoder) {
		switch v := item.(type) {
		case *product.Smartphone:
			e.Field("efficiency", func(e *jx.Encoder) { e.Str(v.Efficiency.String()) })
			e.Field("model", func(e *jx.Encoder) { e.Str(v.Model) })
			e.Field("memory", func(e *jx.Encoder) { e.Int(v.Memory) })
			e.Field("color", func(e *jx.Encoder) { e.Str(v.SmartphoneAttrs.Color) })
		case *product.LawnGrass:
			e.Field("country", func(e *jx.Encoder) { e.Str(v.Country) })
			e.Field("germination_period", func(e *jx.Encoder) { e.Str(v.GerminationPeriod) })
			e.Field("color", func(e *jx.Encoder) { e.Str(v.LawnGrassAttrs.Color) })
		}
	})
	return e.Bytes()
}

// RecordOf converts an item back into a ProductRecord.
func RecordOf(item product.Item) ProductRecord {
	b := item.Base()
	rec := ProductRecord{
		Record: product.Record{
			Name:        b.Name,
			Description: b.Description,
			Price:       b.Price(),
			Quantity:    b.Quantity,
		},
		Kind: item.Kind(),
	}
	switch v := item.(type) {
	case *product.Smartphone:
		rec.Smartphone = v.SmartphoneAttrs
	case *product.LawnGrass:
		rec.LawnGrass = v.LawnGrassAttrs
	}
	return rec
}
