package feeds

import "fmt"

func (e *FeedError) Error() string {
	return fmt.Sprintf("%s %s (%s): %v", e.Op, e.Feed, e.URL, e.Err)
}

func (e *FeedError) Unwrap() error {
	return e.Err
}

func (f *Feed) wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &FeedError{
		Feed: f.name,
		URL:  f.target.Location(),
		Op:   op,
		Err:  err,
	}
}

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "Uninitialized"
	case StatePendingComputed:
		return "PendingComputed"
	case StatePushed:
		return "Pushed"
	case StatePromoted:
		return "Promoted"
	case StateDone:
		return "Done"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

func (v Variant) String() string {
	switch v {
	case VariantLocal:
		return "Local"
	case VariantRemote:
		return "Remote"
	case VariantOrganization:
		return "Organization"
	case VariantOrganizationViews:
		return "OrganizationWithViews"
	default:
		return fmt.Sprintf("Variant(%d)", int(v))
	}
}
