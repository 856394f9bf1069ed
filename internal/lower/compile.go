package lower

import (
	"fmt"
	"io"

	"jsjit/internal/asmjs"
	"jsjit/internal/config"
	"jsjit/internal/ir"
	"jsjit/internal/jitframe"
)

// Compile lowers t for the target described by cfg and renders the
// asm.js module. The function takes the trace name, or the configured
// default when the trace has none.
func Compile(t *ir.Trace, cfg *config.Config, log io.Writer) (*asmjs.Module, *Result, error) {
	layout := jitframe.NewLayout(cfg)
	res, err := lowerFor(t, cfg, layout, log)
	if err != nil {
		return nil, nil, err
	}
	mod, err := asmjs.EmitModule(cfg.Module.Name, layout, res.Func)
	if err != nil {
		return nil, nil, err
	}
	return mod, res, nil
}

// CompileAll lowers each trace into its own function of a single
// module. Errors name the trace they came from.
func CompileAll(ts []*ir.Trace, cfg *config.Config, log io.Writer) (*asmjs.Module, []*Result, error) {
	layout := jitframe.NewLayout(cfg)
	results := make([]*Result, len(ts))
	fns := make([]*asmjs.Func, len(ts))
	for i, t := range ts {
		res, err := lowerFor(t, cfg, layout, log)
		if err != nil {
			return nil, nil, fmt.Errorf("%s: %w", t.Name, err)
		}
		results[i], fns[i] = res, res.Func
	}
	mod, err := asmjs.EmitModule(cfg.Module.Name, layout, fns...)
	if err != nil {
		return nil, nil, err
	}
	return mod, results, nil
}

func lowerFor(t *ir.Trace, cfg *config.Config, layout *jitframe.Layout, log io.Writer) (*Result, error) {
	name := t.Name
	if name == "" {
		name = cfg.Module.Function
	}
	return Lower(t, Options{
		Name:     name,
		Layout:   layout,
		TypeInfo: jitframe.NewTypeInfo(cfg),
		Log:      log,
	})
}
