/*
Copyright © 2025 Benny Powers <web@bennypowers.com>

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with this program. If not, see <http://www.gnu.org/licenses/>.
*/

package watcher

import "encoding/json"

// jsonCause mirrors Cause for (de)serialization; EntryChange's own JSON
// encoding is handled through this shadow type rather than struct tags so
// the exported Cause/EntryChange types stay free of encoding concerns.
type jsonCause struct {
	File  string `json:"file"`
	State string `json:"state"`
}

type jsonEntryChange struct {
	ChangeType string     `json:"changeType"`
	Entry      string     `json:"entry"`
	Cause      *jsonCause `json:"cause,omitempty"`
	Tree       []string   `json:"tree,omitempty"`
}

// MarshalJSON renders an EntryChange per spec §6's record shape: a record
// with a stringified changeType/cause.state, omitting cause/tree when
// absent. Used by the CLI driver's -x/--exec "[info]" substitution.
func (c EntryChange) MarshalJSON() ([]byte, error) {
	out := jsonEntryChange{
		ChangeType: c.ChangeType.String(),
		Entry:      c.Entry,
	}
	if c.Cause != nil {
		out.Cause = &jsonCause{File: c.Cause.File, State: c.Cause.State.String()}
	}
	if c.Tree != nil {
		out.Tree = c.Tree
	}
	return json.Marshal(out)
}
