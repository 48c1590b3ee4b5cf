package client

import (
	"encoding/json"

	"github.com/tidwall/gjson"
)

// FindList locates the array holding the records in a list response.
//
// Accepted shapes, in order: a bare array; an object whose "content" is an array
// (paginated); an object whose "data" is an array (wrapper). Anything else is
// searched breadth-first for the shallowest array, siblings visited in the order
// they appear in the document. ok is false when the body has no array at all.
func FindList(body []byte) (gjson.Result, bool) {
	if !gjson.ValidBytes(body) {
		return gjson.Result{}, false
	}
	root := gjson.ParseBytes(body)
	if root.IsArray() {
		return root, true
	}
	if !root.IsObject() {
		return gjson.Result{}, false
	}
	if content := root.Get("content"); content.IsArray() {
		return content, true
	}
	if data := root.Get("data"); data.IsArray() {
		return data, true
	}

	queue := []gjson.Result{root}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		var found gjson.Result
		ok := false
		cur.ForEach(func(_, v gjson.Result) bool {
			if v.IsArray() {
				found, ok = v, true
				return false
			}
			if v.IsObject() {
				queue = append(queue, v)
			}
			return true
		})
		if ok {
			return found, true
		}
	}
	return gjson.Result{}, false
}

// DecodeList normalises any supported envelope into a flat slice. It never
// fails: elements that do not decode into T are skipped and an unrecognised
// body yields an empty, non-nil slice.
func DecodeList[T any](body []byte) []T {
	out := []T{}
	list, ok := FindList(body)
	if !ok {
		return out
	}
	list.ForEach(func(_, v gjson.Result) bool {
		if !v.IsObject() {
			return true
		}
		var item T
		if err := json.Unmarshal([]byte(v.Raw), &item); err == nil {
			out = append(out, item)
		}
		return true
	})
	return out
}
