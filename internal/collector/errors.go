package collector

import "fmt"

// InvalidInputError reports a request that cannot identify a company. It is
// the only collector error that surfaces to callers; source failures degrade
// to missing data instead.
type InvalidInputError struct {
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid input: %s", e.Reason)
}
