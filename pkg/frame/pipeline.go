package frame

import "context"

// Transform is a mutation applied to a Frame. Implementations return a new
// frame or the input frame, never a partially updated one on error.
type Transform interface {
	Name() string
	Apply(ctx context.Context, f *Frame) (*Frame, error)
}

// Pipeline composes a sequence of Transforms.
type Pipeline struct {
	steps []Transform
}

func NewPipeline() *Pipeline { return &Pipeline{} }

func (p *Pipeline) Add(t Transform) *Pipeline {
	p.steps = append(p.steps, t)
	return p
}

// Len returns the number of steps.
func (p *Pipeline) Len() int { return len(p.steps) }

func (p *Pipeline) Run(ctx context.Context, f *Frame) (*Frame, error) {
	var err error
	cur := f
	for _, t := range p.steps {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		cur, err = t.Apply(ctx, cur)
		if err != nil {
			return nil, err
		}
	}
	return cur, nil
}
