package wexbim

import (
	"fmt"
	"iter"

	"go.uber.org/zap"
)

// Decoder drives the parse of one or more WexBIM streams. The zero value is
// usable; options add logging and progress reporting. A Decoder holds no
// state between calls and is safe for concurrent use.
type Decoder struct {
	log      *zap.Logger
	progress func(consumed, total int)
}

// Option configures a Decoder.
type Option func(*Decoder)

// WithLogger routes decode warnings to the given logger.
func WithLogger(log *zap.Logger) Option {
	return func(d *Decoder) { d.log = log }
}

// WithProgress installs a callback invoked after every geometry block with
// the number of bytes consumed so far and the total stream size.
func WithProgress(fn func(consumed, total int)) Option {
	return func(d *Decoder) { d.progress = fn }
}

// NewDecoder returns a Decoder with the given options applied.
func NewDecoder(opts ...Option) *Decoder {
	d := &Decoder{log: zap.NewNop()}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Decode parses a complete WexBIM stream synchronously.
//
// Structural errors (bad magic, unsupported version, truncation outside a
// geometry sub-region) abort the decode. Problems local to one geometry
// block drop that block and are collected on Model.Diagnostics; the rest of
// the file still decodes.
func Decode(data []byte) (*Model, error) {
	return NewDecoder().Decode(data)
}

// Decode parses a complete WexBIM stream synchronously. See the package
// function Decode.
func (d *Decoder) Decode(data []byte) (*Model, error) {
	model, blocks, err := d.Stream(data)
	if err != nil {
		return nil, err
	}
	for blk, err := range blocks {
		if err != nil {
			return nil, err
		}
		model.Blocks = append(model.Blocks, blk)
	}
	return model, nil
}

// Stream parses the header and the region, style and product tables eagerly
// and returns them on a Model whose Blocks slice is empty, together with an
// iterator producing one geometry block at a time in file order.
//
// The iterator is single-use. It only suspends between whole blocks, so a
// host can pump it cooperatively and stay responsive; breaking out of the
// iteration abandons the rest of the stream with no side effects. Dropped
// blocks are not yielded; their diagnostics accumulate on the Model as
// iteration advances.
func (d *Decoder) Stream(data []byte) (*Model, iter.Seq2[*Block, error], error) {
	if d.log == nil {
		// Zero-value Decoder: log to a no-op logger without mutating d.
		nd := *d
		nd.log = zap.NewNop()
		d = &nd
	}
	r := newReader(data)

	header, err := parseHeader(r)
	if err != nil {
		return nil, nil, err
	}
	regions, err := parseRegions(r, int(header.RegionCount))
	if err != nil {
		return nil, nil, err
	}
	styles, err := parseStyles(r, int(header.StyleCount))
	if err != nil {
		return nil, nil, err
	}
	products, err := parseProducts(r, int(header.ProductCount))
	if err != nil {
		return nil, nil, err
	}

	model := &Model{
		Header:   header,
		Regions:  regions,
		Styles:   styles,
		Products: products,
	}

	blocks := func(yield func(*Block, error) bool) {
		blockIdx := 0
		emit := func(region int) (bool, error) {
			blk, err := d.parseBlock(r, model, region, blockIdx)
			blockIdx++
			if err != nil {
				return false, err
			}
			if d.progress != nil {
				d.progress(r.off, len(data))
			}
			if blk == nil { // dropped
				return true, nil
			}
			return yield(blk, nil), nil
		}

		if header.Version >= 3 {
			// Regions own their geometry blocks.
			for ri := range regions {
				count, err := r.readInt32()
				if err != nil {
					yield(nil, ErrUnexpectedEOF)
					return
				}
				if count < 0 {
					yield(nil, fmt.Errorf("%w: %d geometry blocks in region %d", ErrBadCount, count, ri))
					return
				}
				for b := int32(0); b < count; b++ {
					cont, err := emit(ri)
					if err != nil {
						yield(nil, err)
						return
					}
					if !cont {
						return
					}
				}
			}
		} else {
			// Older streams carry one flat run of blocks to end of stream.
			for !r.atEnd() {
				cont, err := emit(-1)
				if err != nil {
					yield(nil, err)
					return
				}
				if !cont {
					return
				}
			}
		}

		if n := r.remaining(); n > 0 {
			d.log.Warn("trailing bytes after last region", zap.Int("bytes", n))
		}
	}

	return model, blocks, nil
}

// parseBlock reads one shape list plus its length-prefixed geometry region.
// A nil block with nil error means the block was dropped; its diagnostic is
// already on the model.
func (d *Decoder) parseBlock(r *reader, model *Model, region, blockIdx int) (*Block, error) {
	shapes, unknown, err := parseShapes(r, model.Header.Version, model.Styles, model.Products)
	if err != nil {
		return nil, err
	}
	for _, label := range unknown {
		diag := Diagnostic{
			Kind:    DiagUnknownProduct,
			Region:  region,
			Block:   blockIdx,
			Message: fmt.Sprintf("shape references product %d with no record", label),
		}
		model.Diagnostics = append(model.Diagnostics, diag)
		d.log.Warn("unknown product", zap.Int32("label", label), zap.Int("block", blockIdx))
	}

	geomLen, err := r.readInt32()
	if err != nil {
		return nil, ErrUnexpectedEOF
	}
	if geomLen < 0 {
		return nil, fmt.Errorf("%w: geometry length %d", ErrBadCount, geomLen)
	}
	sub, err := r.sub(int(geomLen))
	if err != nil {
		return nil, ErrUnexpectedEOF
	}

	geom, trailing, err := parseGeometry(sub)
	if err != nil {
		blkErr, ok := err.(*blockError)
		if !ok {
			return nil, err
		}
		diag := Diagnostic{
			Kind:    blkErr.kind,
			Region:  region,
			Block:   blockIdx,
			Message: blkErr.msg,
		}
		model.Diagnostics = append(model.Diagnostics, diag)
		d.log.Warn("dropping corrupt geometry block",
			zap.Int("block", blockIdx),
			zap.Int("region", region),
			zap.String("kind", blkErr.kind.String()),
			zap.String("detail", blkErr.msg))
		return nil, nil
	}
	if trailing > 0 {
		diag := Diagnostic{
			Kind:    DiagTrailingBytes,
			Region:  region,
			Block:   blockIdx,
			Message: fmt.Sprintf("%d unread bytes in geometry sub-region", trailing),
		}
		model.Diagnostics = append(model.Diagnostics, diag)
		d.log.Warn("trailing bytes in geometry block", zap.Int("block", blockIdx), zap.Int("bytes", trailing))
	}

	return &Block{Region: region, Shapes: shapes, Geometry: geom}, nil
}
