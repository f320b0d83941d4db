package sandbox

import (
	"github.com/dop251/goja"
)

// Bind exposes dom to scripts as the global document object
func (r *Runtime) Bind(dom DOM) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.vm == nil {
		return ErrClosed
	}

	document := r.vm.NewObject()
	if err := document.Set("querySelector", r.querySelector(dom)); err != nil {
		return err
	}
	if err := document.Set("querySelectorAll", r.querySelectorAll(dom)); err != nil {
		return err
	}
	if err := document.Set("getElementById", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) == 0 {
			return goja.Null()
		}
		return r.lookup(dom, "#"+call.Arguments[0].String())
	}); err != nil {
		return err
	}
	if err := document.DefineAccessorProperty("title",
		r.vm.ToValue(func(goja.FunctionCall) goja.Value { return r.vm.ToValue(dom.Title()) }),
		goja.Undefined(), goja.FLAG_FALSE, goja.FLAG_TRUE); err != nil {
		return err
	}

	return r.vm.Set("document", document)
}

func (r *Runtime) querySelector(dom DOM) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) == 0 {
			return goja.Null()
		}
		return r.lookup(dom, call.Arguments[0].String())
	}
}

func (r *Runtime) querySelectorAll(dom DOM) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) == 0 {
			return r.vm.NewArray()
		}
		elems := dom.QuerySelectorAll(call.Arguments[0].String())
		proxies := make([]interface{}, len(elems))
		for i, elem := range elems {
			proxies[i] = r.elementProxy(elem)
		}
		return r.vm.NewArray(proxies...)
	}
}

func (r *Runtime) lookup(dom DOM, selector string) goja.Value {
	elem, ok := dom.QuerySelector(selector)
	if !ok {
		return goja.Null()
	}
	return r.vm.ToValue(r.elementProxy(elem))
}

// elementProxy creates the script-side view of an element
func (r *Runtime) elementProxy(elem Element) map[string]interface{} {
	return map[string]interface{}{
		"tagName":     elem.TagName(),
		"id":          elem.ID(),
		"textContent": elem.TextContent(),
		"getAttribute": func(name string) interface{} {
			if v, ok := elem.Attribute(name); ok {
				return v
			}
			return nil
		},
		"setAttribute": func(name, value string) {
			elem.SetAttribute(name, value)
		},
	}
}
