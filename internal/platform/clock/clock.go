// Package clock provides the wall clock handed to services; tests substitute
// their own implementations.
package clock

import "time"

type System struct{}

func (System) Now() time.Time { return time.Now() }
