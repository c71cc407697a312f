// SPDX-License-Identifier: Apache-2.0

package invoice

import (
	"fmt"
	"strings"

	"github.com/beevik/etree"
)

// splitAttr separates an optional trailing "/@Name" attribute selector from
// the element portion of a path expression.
func splitAttr(path string) (elemPath, attr string) {
	if i := strings.LastIndex(path, "/@"); i >= 0 {
		return path[:i], path[i+2:]
	}
	return path, ""
}

// validatePath checks that a path expression compiles, so registry
// construction can reject bad dialect tables up front.
func validatePath(path string) error {
	elemPath, _ := splitAttr(path)
	if elemPath == "" || elemPath == "." {
		return nil
	}
	if _, err := etree.CompilePath(elemPath); err != nil {
		return fmt.Errorf("invalid path %q: %w", path, err)
	}
	return nil
}

// evalPath resolves one path expression against a scope element. The second
// return value is false when the path matches nothing or the matched text is
// empty after trimming.
func evalPath(scope *etree.Element, path string) (string, bool) {
	elemPath, attr := splitAttr(path)

	el := scope
	if elemPath != "" && elemPath != "." {
		el = scope.FindElement(elemPath)
	}
	if el == nil {
		return "", false
	}

	var raw string
	if attr != "" {
		raw = el.SelectAttrValue(attr, "")
	} else {
		raw = el.Text()
	}
	raw = strings.TrimSpace(raw)
	return raw, raw != ""
}

// evalFirst tries each path in order and returns the first resolved value.
func evalFirst(scope *etree.Element, paths []string) (string, bool) {
	for _, p := range paths {
		if v, ok := evalPath(scope, p); ok {
			return v, true
		}
	}
	return "", false
}

// foreignPrefix marks elements whose resolved namespace is not part of the
// dialect. No dialect path may use it, so such elements can never satisfy a
// canonical path expression.
const foreignPrefix = "x-foreign"

// canonicalizePrefixes rewrites element prefixes based on each element's
// resolved namespace URI: URIs in the dialect's prefix map get the canonical
// prefix, any other namespace gets foreignPrefix. Documents are then
// addressable with the same path expressions no matter which prefixes (or a
// default namespace) they happen to declare, and a document binding a
// dialect's canonical prefix to some other namespace cannot shadow the real
// elements. Elements without a namespace are left untouched.
//
// The rewrite is safe in a single pass: namespace resolution reads only the
// xmlns declaration attributes of an element and its ancestors, never the
// Space fields being rewritten.
func canonicalizePrefixes(el *etree.Element, prefixes map[string]string) {
	if uri := el.NamespaceURI(); uri != "" {
		if p, ok := prefixes[uri]; ok {
			el.Space = p
		} else {
			el.Space = foreignPrefix
		}
	}
	for _, child := range el.ChildElements() {
		canonicalizePrefixes(child, prefixes)
	}
}
