package tui

import "github.com/matheuskafuri/leadfinder/internal/lead"

type rerunDoneMsg struct {
	leads     []lead.Lead
	remaining string
	err       error
}

type openErrMsg struct {
	err error
}
