package rules

import (
	"fmt"
	"sync"

	"github.com/Shopify/go-lua"

	"github.com/edusync/edusync/internal/canonical"
)

const transformGlobal = "__edusync_transform"

// NewScriptRule compiles a Lua cleaning script into a Rule. The script
// must return a function that takes a record table and returns the cleaned
// table:
//
//	return function(record)
//	    record.status = "Active"
//	    return record
//	end
//
// A script that errors at apply time passes the record through unchanged;
// cleaning an entire batch should not die on one bad row.
func NewScriptRule(name, source string) (Rule, error) {
	state := lua.NewState()
	lua.OpenLibraries(state)

	if err := lua.LoadString(state, source); err != nil {
		return Rule{}, fmt.Errorf("load script %s: %w", name, err)
	}
	if err := state.ProtectedCall(0, 1, 0); err != nil {
		return Rule{}, fmt.Errorf("run script %s: %w", name, err)
	}
	if !state.IsFunction(-1) {
		state.Pop(1)
		return Rule{}, fmt.Errorf("script %s must return a function", name)
	}
	state.SetGlobal(transformGlobal)

	// A lua.State is not safe for concurrent use.
	var mu sync.Mutex
	return Rule{
		Name: name,
		Apply: func(rec canonical.Record) canonical.Record {
			mu.Lock()
			defer mu.Unlock()

			state.Global(transformGlobal)
			pushRecord(state, rec)
			if err := state.ProtectedCall(1, 1, 0); err != nil {
				return rec.Clone()
			}
			out := popRecord(state)
			if out == nil {
				return rec.Clone()
			}
			return out
		},
	}, nil
}

func pushRecord(state *lua.State, rec canonical.Record) {
	state.NewTable()
	for k, v := range rec {
		state.PushString(v)
		state.SetField(-2, k)
	}
}

// popRecord reads the table at the top of the stack back into a Record and
// pops it. Returns nil when the script returned something else.
func popRecord(state *lua.State) canonical.Record {
	defer state.Pop(1)
	if state.TypeOf(-1) != lua.TypeTable {
		return nil
	}

	out := canonical.Record{}
	index := state.AbsIndex(-1)
	state.PushNil()
	for state.Next(index) {
		if state.TypeOf(-2) == lua.TypeString {
			key, _ := state.ToString(-2)
			switch state.TypeOf(-1) {
			case lua.TypeString, lua.TypeNumber:
				value, _ := state.ToString(-1)
				out[key] = value
			case lua.TypeBoolean:
				out[key] = fmt.Sprintf("%t", state.ToBoolean(-1))
			}
		}
		state.Pop(1)
	}
	return out
}
