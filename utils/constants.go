package utils

import "time"

// DateLayout is the canonical slot date format ("YYYY-MM-DD").
const DateLayout = "2006-01-02"

// DefaultLockTTL is the checkout hold window when the caller supplies none.
const DefaultLockTTL = 120 * time.Second
