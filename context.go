package ratexpr

// Context is a context for evaluating expressions: variable bindings,
// functions, and the bookkeeping of the evaluation in progress. It is not
// safe to use a Context concurrently.
//
// The zero value is ready to use and behaves like NewContext().
type Context struct {
	names map[string]Expr
	funcs map[string]Func
	// active is the chain of names being resolved, outermost first.
	active []string
	notes  []Note
	// prec is the precision of approximations in bits. Zero means 64.
	prec uint
	// powlimit is the largest result of exponentiation, in bits of numerator
	// or denominator, that Eval computes exactly. Zero means DefaultPowLimit.
	powlimit uint64
}

// DefaultPowLimit is the default maximum size in bits of the numerator or
// denominator of an exact power.
const DefaultPowLimit = 1 << 16

// ContextOption is an option used when creating a context.
type ContextOption interface {
	ctxOption()
}

type (
	varopt struct {
		name string
		val  Expr
	}
	varsopt map[string]Expr
	funcopt struct {
		name string
		fn   Func
	}
	nofuncsopt  struct{}
	precopt     uint
	powlimitopt uint64
)

func (varopt) ctxOption()      {}
func (varsopt) ctxOption()     {}
func (funcopt) ctxOption()     {}
func (nofuncsopt) ctxOption()  {}
func (precopt) ctxOption()     {}
func (powlimitopt) ctxOption() {}

// SetVar binds a variable in the context. A nil val removes the binding.
func SetVar(name string, val Expr) ContextOption {
	return varopt{name, val}
}

// SetVars binds any number of variables in the context. Nil values remove
// bindings.
func SetVars(vars map[string]Expr) ContextOption {
	return varsopt(vars)
}

// SetFunc sets a function. To disable a function, pass nil for fn; its name
// then evaluates like any other name.
func SetFunc(name string, fn Func) ContextOption {
	return funcopt{name, fn}
}

// DisableDefaultFuncs removes all functions set before it, including the
// defaults.
func DisableDefaultFuncs() ContextOption {
	return nofuncsopt{}
}

// Prec sets the precision in bits of approximations.
func Prec(prec uint) ContextOption {
	return precopt(prec)
}

// PowLimit sets the largest numerator or denominator, in bits, that
// exponentiation computes exactly. Larger powers are left unreduced. Zero
// selects DefaultPowLimit.
func PowLimit(bits uint64) ContextOption {
	return powlimitopt(bits)
}

// NewContext creates a new evaluation context with the default functions. If
// no precision is given, the default is 64. If no power limit is given, the
// default is DefaultPowLimit.
func NewContext(opts ...ContextOption) *Context {
	ctx := Context{funcs: globalfuncs, prec: 64, powlimit: DefaultPowLimit}
	return ctx.Clone(opts...)
}

// Clone creates a copy of a context and applies options to it. The copy has
// its own bindings; later changes to either context do not affect the other.
func (ctx *Context) Clone(opts ...ContextOption) *Context {
	funcs := ctx.funcs
	if funcs == nil {
		funcs = globalfuncs
	}
	n := Context{
		names:    make(map[string]Expr, len(ctx.names)),
		funcs:    make(map[string]Func, len(funcs)),
		prec:     ctx.prec,
		powlimit: ctx.powlimit,
	}
	// Expressions are immutable, so sharing them is fine.
	for k, v := range ctx.names {
		n.names[k] = v
	}
	for k, v := range funcs {
		n.funcs[k] = v
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		switch opt := opt.(type) {
		case varopt:
			n.Set(opt.name, opt.val)
		case varsopt:
			for k, v := range opt {
				n.Set(k, v)
			}
		case funcopt:
			if opt.fn == nil {
				delete(n.funcs, opt.name)
				continue
			}
			n.funcs[opt.name] = opt.fn
		case nofuncsopt:
			n.funcs = make(map[string]Func)
		case precopt:
			n.prec = uint(opt)
		case powlimitopt:
			n.powlimit = uint64(opt)
		default:
			panic("ratexpr: unknown option type")
		}
	}
	return &n
}

// Set binds a variable, replacing any previous binding. Returns ctx for
// chaining. Setting a nil expression is the same as Delete.
func (ctx *Context) Set(name string, value Expr) *Context {
	if value == nil {
		return ctx.Delete(name)
	}
	if ctx.names == nil {
		ctx.names = make(map[string]Expr)
	}
	ctx.names[name] = value
	return ctx
}

// Delete removes a variable binding. Returns ctx for chaining.
func (ctx *Context) Delete(name string) *Context {
	delete(ctx.names, name)
	return ctx
}

// Lookup returns the expression bound to a variable. Because expressions are
// immutable, the result is effectively a copy. If there is no such variable,
// the result is nil, false.
func (ctx *Context) Lookup(name string) (Expr, bool) {
	v, ok := ctx.names[name]
	return v, ok
}

// Names returns the sorted names of the bound variables.
func (ctx *Context) Names() []string {
	v := make([]string, 0, len(ctx.names))
	for k := range ctx.names {
		v = append(v, k)
	}
	sortstrs(v)
	return v
}

// Func returns the function with the given name, or nil if there is none.
func (ctx *Context) Func(name string) Func {
	return ctx.fn(name)
}

// fn looks up a function. A context that has never had its functions set
// uses the defaults.
func (ctx *Context) fn(name string) Func {
	if ctx.funcs == nil {
		return globalfuncs[name]
	}
	return ctx.funcs[name]
}

// Prec returns the precision in bits of approximations in the context.
func (ctx *Context) Prec() uint {
	if ctx.prec == 0 {
		return 64
	}
	return ctx.prec
}

// Notes returns the notes produced by the last call to Eval or Exec.
func (ctx *Context) Notes() []Note {
	return append(([]Note)(nil), ctx.notes...)
}

// enter marks name as being resolved. The caller must call release once
// resolution of the name ends, however it ends. If the name is already being
// resolved, the result is a *CircularReferenceError.
func (ctx *Context) enter(name string) (release func(), err error) {
	for i, n := range ctx.active {
		if n == name {
			chain := make([]string, 0, len(ctx.active)-i+1)
			chain = append(chain, ctx.active[i:]...)
			return nil, &CircularReferenceError{Name: name, Chain: append(chain, name)}
		}
	}
	k := len(ctx.active)
	ctx.active = append(ctx.active, name)
	return func() { ctx.active = ctx.active[:k] }, nil
}

// note records a diagnostic for the evaluation in progress.
func (ctx *Context) note(e Expr, msg string) {
	ctx.notes = append(ctx.notes, Note{Expr: e, Msg: msg})
}

// Note is a diagnostic about an expression that evaluation left unreduced.
type Note struct {
	// Expr is the unreduced expression.
	Expr Expr
	// Msg describes why it was not reduced.
	Msg string
}

func (n Note) String() string {
	return n.Msg + ": " + n.Expr.String()
}

// sortstrs sorts a string slice without using package sort because that has
// reflection and allocation problems.
func sortstrs(names []string) {
	for i := 1; i < len(names); i++ {
		for j := i; j > 0 && names[j] < names[j-1]; j-- {
			names[j], names[j-1] = names[j-1], names[j]
		}
	}
}
