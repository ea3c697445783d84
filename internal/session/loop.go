package session

// Loop is a headless Host driven explicitly by its caller. It backs the
// simulate command and tests.
type Loop struct {
	initHooks  []func()
	frameHooks []func()
	started    bool
}

// OnSessionInit implements Host.
func (l *Loop) OnSessionInit(hook func()) {
	l.initHooks = append(l.initHooks, hook)
}

// OnFrameTick implements Host.
func (l *Loop) OnFrameTick(hook func()) {
	l.frameHooks = append(l.frameHooks, hook)
}

// Start runs the init hooks once.
func (l *Loop) Start() {
	if l.started {
		return
	}
	l.started = true
	for _, h := range l.initHooks {
		h()
	}
}

// Step runs n frames, starting the loop first if needed.
func (l *Loop) Step(n int) {
	l.Start()
	for range n {
		for _, h := range l.frameHooks {
			h()
		}
	}
}
