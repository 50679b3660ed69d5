package debugger

// RunTUI runs the text user interface front end for dbg.
func RunTUI(dbg *Debugger) error {
	tui := NewTUI(dbg)
	return tui.Run()
}
