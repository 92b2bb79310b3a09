/*
 * Copyright (C) 2024, Xiongfa Li.
 * All rights reserved.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *   http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package order

import (
	"io"
	"os"
	"reflect"
	"testing"
)

type ordered struct {
	name  string
	order int
}

func (o *ordered) GetOrder() int {
	return o.order
}

type priority struct {
	ordered
}

func (p *priority) PriorityOrdered() {}

type plain struct {
	name string
}

func names(items []interface{}) []string {
	var ret []string
	for _, v := range items {
		switch o := v.(type) {
		case *ordered:
			ret = append(ret, o.name)
		case *priority:
			ret = append(ret, o.name)
		case *plain:
			ret = append(ret, o.name)
		}
	}
	return ret
}

func TestCompare(t *testing.T) {
	t.Run("lower first", func(t *testing.T) {
		if Compare(&ordered{order: 1}, &ordered{order: 2}) >= 0 {
			t.Fatal("1 must before 2")
		}
	})
	t.Run("unordered is lowest", func(t *testing.T) {
		if Compare(&plain{}, &ordered{order: LowestPrecedence - 1}) <= 0 {
			t.Fatal("plain must after ordered")
		}
		if Compare(&plain{}, &ordered{order: LowestPrecedence}) != 0 {
			t.Fatal("plain must equal to lowest")
		}
	})
	t.Run("priority first", func(t *testing.T) {
		p := &priority{ordered{order: 100}}
		if Compare(p, &ordered{order: HighestPrecedence}) >= 0 {
			t.Fatal("priority ordered must be first")
		}
	})
	t.Run("nil", func(t *testing.T) {
		if Compare(nil, &ordered{order: 0}) <= 0 {
			t.Fatal("nil must be last")
		}
	})
}

func TestSort(t *testing.T) {
	items := []interface{}{
		&plain{name: "p1"},
		&ordered{name: "o5", order: 5},
		&priority{ordered{name: "pr10", order: 10}},
		&ordered{name: "o-1", order: -1},
		&plain{name: "p2"},
		&ordered{name: "o5b", order: 5},
	}
	Sort(items)
	expect := []string{"pr10", "o-1", "o5", "o5b", "p1", "p2"}
	if !reflect.DeepEqual(names(items), expect) {
		t.Fatal("expect ", expect, " but get ", names(items))
	}
}

func TestSourceProvider(t *testing.T) {
	a := &plain{name: "a"}
	b := &plain{name: "b"}
	c := NewComparator(OptSetSourceProvider(func(o interface{}) (int, bool) {
		if o == b {
			return 1, true
		}
		return 0, false
	}))
	items := []interface{}{a, b}
	c.Sort(items)
	if items[0] != b {
		t.Fatal("b must be first")
	}
}

func TestSortValues(t *testing.T) {
	v := []Ordered{&ordered{name: "3", order: 3}, &ordered{name: "1", order: 1}, &ordered{name: "2", order: 2}}
	SortValues(reflect.ValueOf(v))
	for i, o := range v {
		if o.GetOrder() != i+1 {
			t.Fatal("unexpected order at ", i, ": ", o.GetOrder())
		}
	}
}

func TestSortValuesWithNil(t *testing.T) {
	w := []io.Writer{os.Stdout, nil}
	SortValues(reflect.ValueOf(w))
	if w[0] != os.Stdout || w[1] != nil {
		t.Fatal("unexpected writers: ", w)
	}

	o := &ordered{name: "1", order: 1}
	v := []Ordered{nil, o}
	SortValues(reflect.ValueOf(&v))
	if v[0] != o || v[1] != nil {
		t.Fatal("nil must be sorted as lowest precedence: ", v)
	}
}

func TestWrap(t *testing.T) {
	a := &ordered{name: "a", order: 1}
	b := &plain{name: "b"}
	items := []interface{}{Wrap(a, 0, false), Wrap(b, -10, true)}
	Sort(items)
	if items[0].(Sourced).Unwrap() != b {
		t.Fatal("b must be first with source order -10")
	}
	p := &priority{ordered{name: "p", order: 100}}
	items = []interface{}{Wrap(b, HighestPrecedence, true), Wrap(p, 0, false)}
	Sort(items)
	if items[0].(Sourced).Unwrap() != p {
		t.Fatal("priority must be first")
	}
}
