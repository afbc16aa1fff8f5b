package utils

import "time"

type TimeServiceInterface interface {
	GetNow() time.Time
}

type TimeHelper struct {
}

func (t *TimeHelper) GetNow() time.Time {
	return time.Now()
}
