package simhost

import "errors"

var (
	errDown          = errors.New("simhost: host is down")
	errSpawnRejected = errors.New("simhost: spawn rejected")
)
