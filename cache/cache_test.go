package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateResolveRoundTrip(t *testing.T) {
	c := New(10)
	c.Update("example.com", "1.2.3.4")
	assert.Equal(t, "1.2.3.4", c.Resolve("example.com"))
	checkInvariants(t, c)
}

func TestUpdateOverwrite(t *testing.T) {
	c := New(10)
	c.Update("example.com", "1.2.3.4")
	c.Update("example.com", "5.6.7.8")
	assert.Equal(t, "5.6.7.8", c.Resolve("example.com"))
	checkInvariants(t, c)
}

func TestUpdateEmptyInvalidates(t *testing.T) {
	c := New(10)
	c.Update("example.com", "1.2.3.4")
	c.Update("example.com", "")
	assert.Equal(t, "", c.Resolve("example.com"))
	checkInvariants(t, c)
}

func TestUpdateIdempotent(t *testing.T) {
	c1 := New(10)
	c1.Update("example.com", "1.2.3.4")
	c1.Update("example.com", "1.2.3.4")

	c2 := New(10)
	c2.Update("example.com", "1.2.3.4")

	assert.Equal(t, c1.currentSize, c2.currentSize)
	assert.Equal(t, walkKeysOf(c1), walkKeysOf(c2))
}

func walkKeysOf(c *Cache) map[string]string {
	out := make(map[string]string)
	walkKeys(c.root, "", out)
	return out
}

func TestResolveMiss(t *testing.T) {
	c := New(10)
	assert.Equal(t, "", c.Resolve("nope.com"))
}

func TestRejectsOutOfAlphabet(t *testing.T) {
	c := New(10)
	c.Update("", "1.2.3.4")
	c.Update("Example.com", "1.2.3.4") // uppercase
	c.Update("under_score.com", "1.2.3.4")
	assert.Equal(t, 0, c.Len())
	assert.Equal(t, "", c.Resolve("Example.com"))
}

// Scenario 1 from spec.md §8.
func TestScenarioEvictionOrder(t *testing.T) {
	c := New(3)
	c.Update("a.com", "1")
	c.Update("b.com", "2")
	c.Update("a.org", "3")
	require.Equal(t, "1", c.Resolve("a.com")) // refresh recency of a.com
	c.Update("c.net", "4")                    // over capacity, evicts LRU

	assert.Equal(t, "", c.Resolve("b.com"), "b.com should have been evicted")
	assert.Equal(t, "1", c.Resolve("a.com"))
	assert.Equal(t, "3", c.Resolve("a.org"))
	assert.Equal(t, "4", c.Resolve("c.net"))
	checkInvariants(t, c)
}

// Scenario 2 from spec.md §8.
func TestScenarioSharedPrefixExtend(t *testing.T) {
	c := New(2)
	c.Update("foo", "1")
	c.Update("foobar", "2")

	assert.Equal(t, "1", c.Resolve("foo"))
	assert.Equal(t, "2", c.Resolve("foobar"))

	require.NotNil(t, c.root)
	assert.Equal(t, "foo", c.root.edgeLabel)
	assert.Equal(t, "1", c.root.value)

	idx, _ := symbolIndex('b')
	child := c.root.children[idx]
	require.NotNil(t, child)
	assert.Equal(t, "ar", child.edgeLabel)
	assert.Equal(t, "2", child.value)
	checkInvariants(t, c)
}

// Scenario 3 from spec.md §8.
func TestScenarioMidEdgeSplit(t *testing.T) {
	c := New(2)
	c.Update("foobar", "1")
	c.Update("foo", "2")

	assert.Equal(t, "2", c.Resolve("foo"))
	assert.Equal(t, "1", c.Resolve("foobar"))

	assert.Equal(t, "foo", c.root.edgeLabel)
	assert.Equal(t, "2", c.root.value)

	idx, _ := symbolIndex('b')
	child := c.root.children[idx]
	require.NotNil(t, child)
	assert.Equal(t, "ar", child.edgeLabel)
	assert.Equal(t, "1", child.value)
	checkInvariants(t, c)
}

// Scenario 4 from spec.md §8.
func TestScenarioInsertThenInvalidate(t *testing.T) {
	c := New(10)
	c.Update("a", "1")
	c.Update("a", "")

	assert.Equal(t, 0, c.currentSize)
	assert.Equal(t, "", c.root.edgeLabel)
	assert.Equal(t, "", c.root.value)
	assert.Equal(t, 0, c.root.childCount)
	checkInvariants(t, c)
}

// Scenario 5 from spec.md §8: removal merges the surviving sibling.
func TestScenarioRemovalMerges(t *testing.T) {
	c := New(10)
	c.Update("abc", "1")
	c.Update("abd", "2")
	c.Update("abc", "")

	assert.Equal(t, "2", c.Resolve("abd"))
	assert.Equal(t, "", c.Resolve("abc"))
	assert.Equal(t, "abd", c.root.edgeLabel)
	assert.Equal(t, "2", c.root.value)
	assert.Equal(t, 0, c.root.childCount)
	checkInvariants(t, c)
}

func TestRemovalWithTwoChildrenKeepsBoth(t *testing.T) {
	c := New(10)
	c.Update("abc", "1")
	c.Update("abd", "2")
	c.Update("ab", "3")
	c.Update("ab", "")

	assert.Equal(t, "1", c.Resolve("abc"))
	assert.Equal(t, "2", c.Resolve("abd"))
	assert.Equal(t, "", c.Resolve("ab"))
	checkInvariants(t, c)
}

func TestEvictionCountsAnyAccessAsRecent(t *testing.T) {
	c := New(2)
	c.Update("a.com", "1")
	c.Update("b.com", "2")
	c.Resolve("a.com") // access, not a write
	c.Update("c.com", "3")

	assert.Equal(t, "", c.Resolve("b.com"))
	assert.Equal(t, "1", c.Resolve("a.com"))
	assert.Equal(t, "3", c.Resolve("c.com"))
}

func TestLenNeverExceedsMaxSize(t *testing.T) {
	c := New(4)
	for i := 0; i < 100; i++ {
		c.Update(string(rune('a'+(i%26)))+".com", "1")
		assert.LessOrEqual(t, c.Len(), 4)
	}
}

func TestSingletonDefaultIsStable(t *testing.T) {
	a := Default()
	b := Default()
	assert.Same(t, a, b)
	assert.Equal(t, DefaultCapacity, a.maxSize)
}
