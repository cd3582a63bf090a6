package util_test

import (
	"testing"

	"github.com/hightail/wilson-sub000/util"
	"github.com/stretchr/testify/assert"
)

func TestRemoveDuplicatesFromList(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		list     []string
		expected []string
	}{
		{[]string{}, []string{}},
		{[]string{"foo"}, []string{"foo"}},
		{[]string{"foo", "bar", "foo", "baz", "bar"}, []string{"foo", "bar", "baz"}},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.expected, util.RemoveDuplicatesFromList(tc.list))
	}
}

func TestAppendMissingKeepsOrder(t *testing.T) {
	t.Parallel()

	list := util.AppendMissing([]string{"S2"}, "S", "S2", "S3", "S")
	assert.Equal(t, []string{"S2", "S", "S3"}, list)
}

func TestRemoveElementFromList(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"a", "c"}, util.RemoveElementFromList([]string{"a", "b", "c", "b"}, "b"))
	assert.Nil(t, util.RemoveElementFromList([]string{"b"}, "b"))
	assert.Equal(t, []string{"c"}, util.RemoveSublistFromList([]string{"a", "b", "c"}, []string{"a", "b"}))
}

func TestToSet(t *testing.T) {
	t.Parallel()

	set := util.ToSet([]string{"a", "b", "a"})
	assert.Len(t, set, 2)
	assert.Contains(t, set, "a")
	assert.True(t, util.ListContainsElement([]string{"x", "y"}, "y"))
}
