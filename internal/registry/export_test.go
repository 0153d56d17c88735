package registry

// uninstall clears the process default so install tests are independent.
func uninstall() {
	installMu.Lock()
	defer installMu.Unlock()
	installed.Store(nil)
}
