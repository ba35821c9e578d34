package proxy

import (
	"slices"
	"strings"

	berrors "github.com/goliatone/go-boiler/pkg/errors"
	"github.com/goliatone/go-boiler/pkg/value"
)

// Sort modes accepted by Seq.Sorted. Modes are case-insensitive and trimmed.
const (
	SortValues        = ""   // ascending by value, reindexed
	SortValuesReverse = "r"  // descending by value, reindexed
	SortAssoc         = "a"  // ascending by value, keys kept
	SortAssocReverse  = "ar" // descending by value, keys kept
	SortKeys          = "k"  // ascending by key
	SortKeysReverse   = "kr" // descending by key
	SortUser          = "u"  // user comparator on values, reindexed
	SortUserAssoc     = "ua" // user comparator on values, keys kept
)

// Sorted returns a sorted copy of s. The user modes need a comparator
// receiving two raw values and returning a negative, zero or positive
// number; func(a, b any) int is used directly, any other function is called
// through reflection.
func (s *Seq) Sorted(mode string, comparator ...any) (*Seq, error) {
	mode = strings.ToLower(strings.TrimSpace(mode))
	pairs := s.items.Pairs()

	byValue := func(a, b value.Pair) int { return value.Compare(a.Value, b.Value) }
	byKey := func(a, b value.Pair) int { return value.Compare(a.Key, b.Key) }
	reverse := func(f func(a, b value.Pair) int) func(a, b value.Pair) int {
		return func(a, b value.Pair) int { return f(b, a) }
	}

	var (
		order    func(a, b value.Pair) int
		keepKeys bool
		callErr  error
	)

	switch mode {
	case SortValues:
		order = byValue
	case SortValuesReverse:
		order = reverse(byValue)
	case SortAssoc:
		order, keepKeys = byValue, true
	case SortAssocReverse:
		order, keepKeys = reverse(byValue), true
	case SortKeys:
		order, keepKeys = byKey, true
	case SortKeysReverse:
		order, keepKeys = reverse(byKey), true
	case SortUser, SortUserAssoc:
		if len(comparator) == 0 || comparator[0] == nil {
			return nil, berrors.InvalidArgumentf(mode, "no callable provided for user defined sorting")
		}
		user, err := userComparator(comparator[0])
		if err != nil {
			return nil, err
		}
		order = func(a, b value.Pair) int {
			if callErr != nil {
				return 0
			}
			n, err := user(a.Value, b.Value)
			if err != nil {
				callErr = err
			}
			return n
		}
		keepKeys = mode == SortUserAssoc
	default:
		return nil, berrors.InvalidArgumentf(mode, "sort mode '%s' not supported", mode)
	}

	slices.SortStableFunc(pairs, order)
	if callErr != nil {
		return nil, callErr
	}

	if keepKeys {
		return s.derive(value.NewMap(pairs...)), nil
	}
	out := value.NewMap()
	for _, p := range pairs {
		out.Push(p.Value)
	}
	return s.derive(out), nil
}

func userComparator(fn any) (func(a, b any) (int, error), error) {
	if f, ok := fn.(func(a, b any) int); ok {
		return func(a, b any) (int, error) { return f(a, b), nil }, nil
	}
	call, err := callback("sorted", fn)
	if err != nil {
		return nil, err
	}
	return func(a, b any) (int, error) {
		res, err := call(a, b)
		if err != nil {
			return 0, err
		}
		return sign(res), nil
	}, nil
}

func sign(v any) int {
	return value.Compare(Unwrap(v), 0)
}
