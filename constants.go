package main

import "inkpad/internal/styles"

type Mode int

const (
	ModeNormal Mode = iota
	ModePrompt
	ModeSpell
	ModeHelp
	ModeActivity
)

type PromptKind int

const (
	PromptRename PromptKind = iota
	PromptOpen
	PromptSaveAs
	PromptExport
	PromptLink
	PromptImage
	PromptFind
)

func (p PromptKind) label() string {
	switch p {
	case PromptRename:
		return "Rename tab"
	case PromptOpen:
		return "Open file"
	case PromptSaveAs:
		return "Save as"
	case PromptExport:
		return "Export to"
	case PromptLink:
		return "Link with tab"
	case PromptImage:
		return "Insert image"
	case PromptFind:
		return "Find"
	default:
		return ""
	}
}

// brushColors is the palette the drawing color key cycles through.
var brushColors = []styles.Color{
	{R: 0, G: 0, B: 0},
	{R: 220, G: 20, B: 60},
	{R: 30, G: 144, B: 255},
	{R: 34, G: 139, B: 34},
	{R: 255, G: 165, B: 0},
	{R: 128, G: 0, B: 128},
	{R: 255, G: 255, B: 255},
}

const (
	tabBarHeight    = 1
	statusBarHeight = 1
	pageLines       = 10
)
