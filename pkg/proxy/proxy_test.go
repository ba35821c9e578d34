package proxy_test

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	berrors "github.com/goliatone/go-boiler/pkg/errors"
	"github.com/goliatone/go-boiler/pkg/proxy"
	"github.com/goliatone/go-boiler/pkg/value"
)

func mustString(t *testing.T, v any) *proxy.String {
	t.Helper()
	s, ok := v.(*proxy.String)
	if !ok {
		t.Fatalf("want *proxy.String, got %T", v)
	}
	return s
}

func mustSeq(t *testing.T, v any) *proxy.Seq {
	t.Helper()
	s, ok := v.(*proxy.Seq)
	if !ok {
		t.Fatalf("want *proxy.Seq, got %T", v)
	}
	return s
}

func texts(values []any) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = fmt.Sprint(v)
	}
	return out
}

func TestWrapByKind(t *testing.T) {
	if got := proxy.Wrap(13, true); got != 13 {
		t.Fatalf("scalars must not be wrapped, got %T", got)
	}
	if got := proxy.Wrap(nil, true); got != value.Null("") {
		t.Fatalf("nil must become Null, got %#v", got)
	}
	if _, ok := proxy.Wrap("x", true).(*proxy.String); !ok {
		t.Fatalf("strings must become *String")
	}
	if _, ok := proxy.Wrap([]int{1}, true).(*proxy.Seq); !ok {
		t.Fatalf("slices must become *Seq")
	}
	if _, ok := proxy.Wrap(slices.Values([]int{1}), true).(*proxy.Iter); !ok {
		t.Fatalf("iterators must become *Iter")
	}
	if _, ok := proxy.Wrap(struct{}{}, true).(*proxy.Object); !ok {
		t.Fatalf("structs must become *Object")
	}
}

func TestUnwrapReturnsWhatWasWrapped(t *testing.T) {
	ch := make(chan int)
	u := &user{Name: "ann"}
	raw := []int{1}
	cases := map[string]struct {
		in   any
		kind string
	}{
		"scalar": {13, "int"},
		"string": {"<b>", "*proxy.String"},
		"seq":    {raw, "*proxy.Seq"},
		"iter":   {ch, "*proxy.Iter"},
		"object": {u, "*proxy.Object"},
	}
	for name, tc := range cases {
		wrapped := proxy.Wrap(tc.in, true)
		if got := fmt.Sprintf("%T", wrapped); got != tc.kind {
			t.Errorf("%s: wrapped as %s, want %s", name, got, tc.kind)
		}
		if diff := cmp.Diff(tc.in, proxy.Unwrap(wrapped)); diff != "" {
			t.Errorf("%s: unwrap mismatch (-want +got):\n%s", name, diff)
		}
	}

	null := proxy.Wrap(nil, true)
	if null != value.Null("") || proxy.Unwrap(null) != nil {
		t.Fatalf("nil must wrap to Null and unwrap to nil, got %#v", null)
	}
}

func TestWrapIsIdempotent(t *testing.T) {
	first := proxy.Wrap("<b>", true)
	second := proxy.Wrap(first, true)
	if first != second {
		t.Fatalf("wrapping a proxy must return it unchanged")
	}
	if got := fmt.Sprint(second); got != "&lt;b&gt;" {
		t.Fatalf("double wrap escaped twice: %q", got)
	}
}

func TestStringEscaping(t *testing.T) {
	s := mustString(t, proxy.Wrap("<script></script>", true))
	if got := s.String(); got != "&lt;script&gt;&lt;/script&gt;" {
		t.Fatalf("String = %q", got)
	}
	if got := s.Raw(); got != "<script></script>" {
		t.Fatalf("Raw = %q", got)
	}
	if got := s.Unwrap(); got != "<script></script>" {
		t.Fatalf("Unwrap = %v", got)
	}

	off := mustString(t, proxy.Wrap("<b>", false))
	if off.String() != "<b>" || off.Escape() != "&lt;b&gt;" {
		t.Fatalf("unescaped proxy: String=%q Escape=%q", off.String(), off.Escape())
	}
}

func TestStringHelpers(t *testing.T) {
	s := mustString(t, proxy.Wrap("<b>boiler<br>plate</b>", true))
	if got := s.Strip("<br>"); got != "boiler<br>plate" {
		t.Fatalf("Strip(<br>) = %q", got)
	}
	if got := s.Strip(); got != "boilerplate" {
		t.Fatalf("Strip() = %q", got)
	}

	c := mustString(t, proxy.Wrap(`<b onclick="function()">boiler</b>`, true))
	if got := c.Clean(); got != "<b>boiler</b>" {
		t.Fatalf("Clean = %q", got)
	}

	if !mustString(t, proxy.Wrap("", true)).Empty() {
		t.Fatalf("empty string must be Empty")
	}
	if mustString(t, proxy.Wrap("héllo", true)).Len() != 5 {
		t.Fatalf("Len must count characters")
	}
}

func TestSeqGetAndMissingKey(t *testing.T) {
	s := mustSeq(t, proxy.Wrap(map[string]any{"name": "<i>x</i>", "n": 3}, true))

	name, err := s.Get("name")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got := fmt.Sprint(name); got != "&lt;i&gt;x&lt;/i&gt;" {
		t.Fatalf("Get(name) printed %q", got)
	}

	_, err = s.Get("missing")
	if !errors.Is(err, berrors.ErrOutOfBounds) {
		t.Fatalf("want out of bounds, got %v", err)
	}
	if !strings.Contains(err.Error(), "'missing'") {
		t.Fatalf("error must name the key: %v", err)
	}

	list := mustSeq(t, proxy.Wrap([]string{"a"}, true))
	_, err = list.Get(4)
	if err == nil || !strings.Contains(err.Error(), "undefined key 4") {
		t.Fatalf("numeric key error = %v", err)
	}
}

func TestSeqIterationWrapsKeysAndValues(t *testing.T) {
	s := mustSeq(t, proxy.Wrap(value.NewMap(
		value.Pair{Key: "<k>", Value: "<v>"},
		value.Pair{Key: 7, Value: 1.5},
	), true))

	var got []string
	for k, v := range s.All() {
		got = append(got, fmt.Sprint(k)+"="+fmt.Sprint(v))
	}
	want := []string{"&lt;k&gt;=&lt;v&gt;", "7=1.5"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("All mismatch (-want +got):\n%s", diff)
	}

	values := texts(slices.Collect(s.Values()))
	if diff := cmp.Diff([]string{"&lt;v&gt;", "1.5"}, values); diff != "" {
		t.Fatalf("Values mismatch (-want +got):\n%s", diff)
	}
}

func TestSeqMutationAndUnwrap(t *testing.T) {
	orig := []string{"a", "b"}
	s := mustSeq(t, proxy.Wrap(orig, true))

	if got, ok := s.Unwrap().([]string); !ok || len(got) != 2 {
		t.Fatalf("untouched proxy must unwrap to the original slice, got %T", s.Unwrap())
	}

	s.Push("c").Set(0, "z").Delete(1)
	if len(orig) != 2 || orig[0] != "a" {
		t.Fatalf("original slice must not change: %v", orig)
	}
	m, ok := s.Unwrap().(*value.Map)
	if !ok {
		t.Fatalf("mutated proxy must unwrap to *value.Map, got %T", s.Unwrap())
	}
	want := []value.Pair{{Key: 0, Value: "z"}, {Key: 2, Value: "c"}}
	if diff := cmp.Diff(want, m.Pairs()); diff != "" {
		t.Fatalf("pairs mismatch (-want +got):\n%s", diff)
	}
	if !s.Has(2) || s.Exists(1) || s.Count() != 2 {
		t.Fatalf("unexpected Has/Exists/Count state")
	}
}

func TestSeqMapFilterReduce(t *testing.T) {
	s := mustSeq(t, proxy.Wrap([]int{1, 2, 3, 4}, true))

	doubled, err := s.Map(func(v any) any { return v.(int) * 2 })
	if err != nil {
		t.Fatalf("Map: %v", err)
	}
	if diff := cmp.Diff([]string{"2", "4", "6", "8"}, texts(slices.Collect(doubled.Values()))); diff != "" {
		t.Fatalf("Map mismatch (-want +got):\n%s", diff)
	}

	even, err := s.Filter(func(n int) bool { return n%2 == 0 })
	if err != nil {
		t.Fatalf("Filter: %v", err)
	}
	if diff := cmp.Diff([]any{1, 3}, even.Items().Keys()); diff != "" {
		t.Fatalf("Filter must keep keys (-want +got):\n%s", diff)
	}

	sum, err := s.Reduce(func(carry, v any) any {
		n, _ := carry.(int)
		return n + v.(int)
	}, 0)
	if err != nil || sum != 10 {
		t.Fatalf("Reduce = %v, %v", sum, err)
	}

	words := mustSeq(t, proxy.Wrap([]string{"<a>", "b"}, true))
	upper, err := words.Map(func(v any) any {
		_, isProxy := v.(*proxy.String)
		if !isProxy {
			t.Errorf("callback must receive wrapped elements, got %T", v)
		}
		return strings.ToUpper(v.(*proxy.String).Raw())
	})
	if err != nil {
		t.Fatalf("Map words: %v", err)
	}
	if diff := cmp.Diff([]string{"&lt;A&gt;", "B"}, texts(slices.Collect(upper.Values()))); diff != "" {
		t.Fatalf("Map words mismatch (-want +got):\n%s", diff)
	}

	if _, err := s.Map("nope"); !errors.Is(err, berrors.ErrInvalidArgument) {
		t.Fatalf("non-callable must be invalid argument, got %v", err)
	}
}

func TestSeqMerge(t *testing.T) {
	s := mustSeq(t, proxy.Wrap(value.NewMap(
		value.Pair{Key: 0, Value: "a"},
		value.Pair{Key: "x", Value: "old"},
	), true))
	other := proxy.Wrap(value.NewMap(
		value.Pair{Key: "x", Value: "new"},
		value.Pair{Key: 0, Value: "b"},
	), true)

	merged, err := s.Merge(other)
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	want := []value.Pair{
		{Key: 0, Value: "a"},
		{Key: "x", Value: "new"},
		{Key: 1, Value: "b"},
	}
	if diff := cmp.Diff(want, merged.Items().Pairs()); diff != "" {
		t.Fatalf("Merge mismatch (-want +got):\n%s", diff)
	}

	if _, err := s.Merge(13); !errors.Is(err, berrors.ErrInvalidArgument) {
		t.Fatalf("merging a scalar must fail, got %v", err)
	}
}

func TestSeqSorted(t *testing.T) {
	data := value.NewMap(
		value.Pair{Key: "b", Value: 2},
		value.Pair{Key: "c", Value: 1},
		value.Pair{Key: "a", Value: 3},
	)
	s := mustSeq(t, proxy.Wrap(data, true))

	cases := []struct {
		mode string
		want []value.Pair
	}{
		{"", []value.Pair{{Key: 0, Value: 1}, {Key: 1, Value: 2}, {Key: 2, Value: 3}}},
		{" R ", []value.Pair{{Key: 0, Value: 3}, {Key: 1, Value: 2}, {Key: 2, Value: 1}}},
		{"a", []value.Pair{{Key: "c", Value: 1}, {Key: "b", Value: 2}, {Key: "a", Value: 3}}},
		{"ar", []value.Pair{{Key: "a", Value: 3}, {Key: "b", Value: 2}, {Key: "c", Value: 1}}},
		{"k", []value.Pair{{Key: "a", Value: 3}, {Key: "b", Value: 2}, {Key: "c", Value: 1}}},
		{"kr", []value.Pair{{Key: "c", Value: 1}, {Key: "b", Value: 2}, {Key: "a", Value: 3}}},
	}
	for _, tc := range cases {
		t.Run("mode "+tc.mode, func(t *testing.T) {
			sorted, err := s.Sorted(tc.mode)
			if err != nil {
				t.Fatalf("Sorted(%q): %v", tc.mode, err)
			}
			if diff := cmp.Diff(tc.want, sorted.Items().Pairs()); diff != "" {
				t.Fatalf("Sorted(%q) mismatch (-want +got):\n%s", tc.mode, diff)
			}
		})
	}

	desc := func(a, b any) int { return b.(int) - a.(int) }
	user, err := s.Sorted("u", desc)
	if err != nil {
		t.Fatalf("Sorted(u): %v", err)
	}
	if diff := cmp.Diff([]value.Pair{{Key: 0, Value: 3}, {Key: 1, Value: 2}, {Key: 2, Value: 1}}, user.Items().Pairs()); diff != "" {
		t.Fatalf("Sorted(u) mismatch (-want +got):\n%s", diff)
	}

	reflected := func(a, b int) int { return a - b }
	ua, err := s.Sorted("UA", reflected)
	if err != nil {
		t.Fatalf("Sorted(ua): %v", err)
	}
	if diff := cmp.Diff([]value.Pair{{Key: "c", Value: 1}, {Key: "b", Value: 2}, {Key: "a", Value: 3}}, ua.Items().Pairs()); diff != "" {
		t.Fatalf("Sorted(ua) mismatch (-want +got):\n%s", diff)
	}

	if data.Keys()[0] != "b" {
		t.Fatalf("Sorted must not reorder the source")
	}
}

func TestSeqSortedErrors(t *testing.T) {
	s := mustSeq(t, proxy.Wrap([]int{2, 1}, true))

	_, err := s.Sorted("x")
	if !errors.Is(err, berrors.ErrInvalidArgument) || !strings.Contains(err.Error(), "'x'") {
		t.Fatalf("unknown mode error = %v", err)
	}

	_, err = s.Sorted("u")
	if !errors.Is(err, berrors.ErrInvalidArgument) {
		t.Fatalf("user mode without comparator = %v", err)
	}
}

func TestIterSinglePass(t *testing.T) {
	seq := maps.All(map[string]string{"k": "<v>"})
	it, ok := proxy.Wrap(seq, true).(*proxy.Iter)
	if !ok {
		t.Fatalf("want *proxy.Iter")
	}

	if !it.Next() {
		t.Fatalf("Next must yield the first element")
	}
	if got := fmt.Sprint(it.Key()) + fmt.Sprint(it.Current()); got != "k&lt;v&gt;" {
		t.Fatalf("cursor = %q", got)
	}
	if it.Next() {
		t.Fatalf("iterator must be exhausted")
	}
	if n := len(slices.Collect(it.Values())); n != 0 {
		t.Fatalf("exhausted iterator yielded %d values", n)
	}
}

func TestIterToSeqAndChannels(t *testing.T) {
	ch := make(chan string, 3)
	ch <- "a"
	ch <- "<b>"
	ch <- "c"
	close(ch)

	it := proxy.Wrap(ch, true).(*proxy.Iter)
	if !it.Next() {
		t.Fatalf("Next on channel")
	}
	rest := it.ToSeq()
	want := []value.Pair{{Key: 1, Value: "<b>"}, {Key: 2, Value: "c"}}
	if diff := cmp.Diff(want, rest.Items().Pairs()); diff != "" {
		t.Fatalf("ToSeq mismatch (-want +got):\n%s", diff)
	}
	it.Close()

	values := proxy.Wrap(slices.Values([]string{"<x>"}), true).(*proxy.Iter)
	if diff := cmp.Diff([]string{"&lt;x&gt;"}, texts(slices.Collect(values.Values()))); diff != "" {
		t.Fatalf("Values mismatch (-want +got):\n%s", diff)
	}
	if got := values.String(); got != "" {
		t.Fatalf("printing an iterator must be empty, got %q", got)
	}
}

type user struct {
	Name string
}

func (u user) String() string { return "<" + u.Name + ">" }

func (u *user) Greet(who string) string { return "hi " + who + " from " + u.Name }

type plain struct{ Secret string }

func TestSeqPrintsElementsThroughTheirProxies(t *testing.T) {
	items := []any{plain{Secret: "hunter2"}, user{Name: "ann"}, "<s>", 3, nil, []string{"<n>"}}

	escaped := fmt.Sprint(proxy.Wrap(items, true))
	if want := "[ &lt;ann&gt; &lt;s&gt; 3  [&lt;n&gt;]]"; escaped != want {
		t.Fatalf("escaped = %q, want %q", escaped, want)
	}
	if strings.Contains(escaped, "hunter2") {
		t.Fatalf("struct fields leaked: %q", escaped)
	}
	if got, want := fmt.Sprint(proxy.Wrap(items, false)), "[ <ann> <s> 3  [<n>]]"; got != want {
		t.Fatalf("unescaped = %q, want %q", got, want)
	}
}

func TestClosersReleasePulledIterators(t *testing.T) {
	closers := &proxy.Closers{}
	opts := proxy.Options{Autoescape: true, Closers: closers}

	stepped := proxy.WrapWith(slices.Values([]int{1, 2, 3}), opts).(*proxy.Iter)
	ranged := proxy.WrapWith(slices.Values([]int{4}), opts).(*proxy.Iter)
	if !stepped.Next() {
		t.Fatalf("Next must yield the first element")
	}
	for range ranged.Values() {
	}
	if n := closers.Len(); n != 1 {
		t.Fatalf("tracked %d iterators, want only the stepped one", n)
	}

	closers.Close()
	closers.Close()
	if closers.Len() != 0 || stepped.Next() {
		t.Fatalf("closed iterator must stay exhausted")
	}
}

func TestObjectForwarding(t *testing.T) {
	u := &user{Name: "ann"}
	obj := proxy.Wrap(u, true).(*proxy.Object)

	if got := obj.String(); got != "&lt;ann&gt;" {
		t.Fatalf("String = %q", got)
	}

	name, err := obj.Get("Name")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if _, ok := name.(*proxy.String); !ok {
		t.Fatalf("property must be wrapped, got %T", name)
	}

	greeting, err := obj.Call("Greet", proxy.Wrap("<bob>", true))
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if got := fmt.Sprint(greeting); got != "hi &lt;bob&gt; from ann" {
		t.Fatalf("Call result printed %q", got)
	}

	if _, err := obj.Set("Name", "zed"); err != nil || u.Name != "zed" {
		t.Fatalf("Set: %v (name %q)", err, u.Name)
	}

	_, err = obj.Get("missing")
	if !errors.Is(err, berrors.ErrInvalidArgument) || !strings.Contains(err.Error(), "no such property") {
		t.Fatalf("missing property error = %v", err)
	}
	_, err = obj.Call("Missing")
	if !errors.Is(err, berrors.ErrInvalidArgument) || !strings.Contains(err.Error(), "no such method") {
		t.Fatalf("missing method error = %v", err)
	}

	if got := proxy.Wrap(plain{Secret: "s"}, true).(*proxy.Object).String(); got != "" {
		t.Fatalf("non-stringer objects print nothing, got %q", got)
	}
}

func TestObjectInvoke(t *testing.T) {
	fn := proxy.Wrap(func(name string) string { return "<" + name + ">" }, true).(*proxy.Object)
	out, err := fn.Invoke(proxy.Wrap("x", true))
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if got := fmt.Sprint(out); got != "&lt;x&gt;" {
		t.Fatalf("Invoke printed %q", got)
	}
	if got := proxy.Unwrap(out); got != "<x>" {
		t.Fatalf("Unwrap = %v", got)
	}
}
