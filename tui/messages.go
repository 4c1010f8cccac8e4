package tui

import (
	"inkfeed/feeds"
	"inkfeed/models"
)

// navigatedMsg carries the outcome of a navigation that may have fetched
type navigatedMsg struct {
	seq   int
	state feeds.State
	view  models.View
}

type openErrMsg struct {
	err error
}
