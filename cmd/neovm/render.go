package main

import (
	"fmt"

	"github.com/xlab/treeprint"

	"github.com/colorfulnotion/neovm/vm"
	"github.com/colorfulnotion/neovm/vm/stackitem"
)

const maxRenderDepth = 8

// renderResultStack draws the result stack top-first as a tree.
func renderResultStack(e *vm.Engine) string {
	tree := treeprint.NewWithRoot("result stack")
	items := e.ResultStack().Items()
	if len(items) == 0 {
		tree.AddNode("(empty)")
		return tree.String()
	}
	for i := len(items) - 1; i >= 0; i-- {
		renderItem(tree, fmt.Sprintf("[%d]", len(items)-1-i), items[i], 0)
	}
	return tree.String()
}

// renderEvalStack draws the current context's evaluation stack.
func renderEvalStack(e *vm.Engine) string {
	ctx := e.Context()
	if ctx == nil {
		return "(no context)\n"
	}
	tree := treeprint.NewWithRoot(fmt.Sprintf("eval stack (depth %d)", e.InvocationDepth()))
	items := ctx.Estack().Items()
	if len(items) == 0 {
		tree.AddNode("(empty)")
		return tree.String()
	}
	for i := len(items) - 1; i >= 0; i-- {
		renderItem(tree, fmt.Sprintf("[%d]", len(items)-1-i), items[i], 0)
	}
	return tree.String()
}

func renderItem(tree treeprint.Tree, label string, item stackitem.Item, depth int) {
	if depth >= maxRenderDepth {
		tree.AddNode(label + " …")
		return
	}
	switch t := item.(type) {
	case *stackitem.Array:
		branch := tree.AddBranch(fmt.Sprintf("%s Array[%d]", label, t.Len()))
		for i, elem := range t.Value() {
			renderItem(branch, fmt.Sprintf("[%d]", i), elem, depth+1)
		}
	case *stackitem.Struct:
		branch := tree.AddBranch(fmt.Sprintf("%s Struct[%d]", label, t.Len()))
		for i, elem := range t.Value() {
			renderItem(branch, fmt.Sprintf("[%d]", i), elem, depth+1)
		}
	case *stackitem.Map:
		branch := tree.AddBranch(fmt.Sprintf("%s Map[%d]", label, t.Len()))
		for _, elem := range t.Value() {
			renderItem(branch, elem.Key.String()+" →", elem.Value, depth+1)
		}
	default:
		tree.AddNode(fmt.Sprintf("%s %s", label, item))
	}
}
