package enum

import (
	"encoding/json"
)

// CheckoutState tracks a terminal's progress through preview, commit, and print
type CheckoutState int

const (
	CheckoutStateIdle      CheckoutState = 0
	CheckoutStatePreviewed CheckoutState = 1
	CheckoutStateCommitted CheckoutState = 2
	// CheckoutStatePreviewing and CheckoutStateCommitting hold the terminal while
	// a backend call is in flight.
	CheckoutStatePreviewing CheckoutState = 3
	CheckoutStateCommitting CheckoutState = 4
)

var checkoutStateNames = [...]string{"idle", "previewed", "committed", "previewing", "committing"}

func (s CheckoutState) String() string {
	if s < 0 || int(s) >= len(checkoutStateNames) {
		return "idle"
	}
	return checkoutStateNames[s]
}

// ModalOpen reports whether the receipt modal is shown for this state.
func (s CheckoutState) ModalOpen() bool {
	switch s {
	case CheckoutStatePreviewed, CheckoutStateCommitting, CheckoutStateCommitted:
		return true
	}
	return false
}

// InFlight reports whether a preview or commit request is outstanding.
func (s CheckoutState) InFlight() bool {
	return s == CheckoutStatePreviewing || s == CheckoutStateCommitting
}

func (s CheckoutState) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *CheckoutState) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		*s = CheckoutState(i)
		return nil
	}
	*s = CheckoutStateIdle
	for i, name := range checkoutStateNames {
		if name == str {
			*s = CheckoutState(i)
			break
		}
	}
	return nil
}
