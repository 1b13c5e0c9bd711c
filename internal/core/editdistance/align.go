package editdistance

// OpKind classifies a single alignment step.
type OpKind int

const (
	// Match means the elements at both positions are equal.
	Match OpKind = iota
	// Substitute replaces the source element with the target element.
	Substitute
	// Insert adds a target element that has no source counterpart.
	Insert
	// Delete drops a source element that has no target counterpart.
	Delete
)

// String returns the lower-case name of the operation.
func (k OpKind) String() string {
	switch k {
	case Match:
		return "match"
	case Substitute:
		return "substitute"
	case Insert:
		return "insert"
	case Delete:
		return "delete"
	default:
		return "unknown"
	}
}

// Op is one step of an alignment between a source and a target sequence.
// Source is the zero value for Insert, Target is the zero value for Delete.
type Op[T comparable] struct {
	Kind   OpKind
	Source T
	Target T
}

// Align returns a minimum-cost alignment that transforms a into b. The
// number of non-Match operations equals Slices(a, b).
//
// Unlike Slices, Align keeps the full (m+1)x(n+1) table for the backtrace.
func Align[T comparable](a, b []T) []Op[T] {
	m, n := len(a), len(b)
	dp := make([][]int, m+1)
	for i := range dp {
		dp[i] = make([]int, n+1)
		dp[i][0] = i
	}
	for j := 0; j <= n; j++ {
		dp[0][j] = j
	}

	for i := 1; i <= m; i++ {
		for j := 1; j <= n; j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			dp[i][j] = min(dp[i-1][j]+1, dp[i][j-1]+1, dp[i-1][j-1]+cost)
		}
	}

	ops := make([]Op[T], 0, max(m, n))
	i, j := m, n
	for i > 0 || j > 0 {
		switch {
		case i > 0 && j > 0 && a[i-1] == b[j-1] && dp[i][j] == dp[i-1][j-1]:
			ops = append(ops, Op[T]{Kind: Match, Source: a[i-1], Target: b[j-1]})
			i--
			j--
		case i > 0 && j > 0 && dp[i][j] == dp[i-1][j-1]+1:
			ops = append(ops, Op[T]{Kind: Substitute, Source: a[i-1], Target: b[j-1]})
			i--
			j--
		case i > 0 && dp[i][j] == dp[i-1][j]+1:
			ops = append(ops, Op[T]{Kind: Delete, Source: a[i-1]})
			i--
		default:
			ops = append(ops, Op[T]{Kind: Insert, Target: b[j-1]})
			j--
		}
	}

	for l, r := 0, len(ops)-1; l < r; l, r = l+1, r-1 {
		ops[l], ops[r] = ops[r], ops[l]
	}
	return ops
}
