package eval

import (
	"fmt"
	"syscall"
)

// Messages for abnormal terminations. An empty message prints an empty line.
var signalMessages = map[syscall.Signal]string{
	syscall.SIGHUP:  "Hangup",
	syscall.SIGINT:  "",
	syscall.SIGQUIT: "Quit",
	syscall.SIGILL:  "Illegal instruction",
	syscall.SIGTRAP: "Trace/BPT trap",
	syscall.SIGABRT: "IOT trap",
	syscall.SIGFPE:  "Floating exception",
	syscall.SIGKILL: "Killed",
	syscall.SIGBUS:  "Bus error",
	syscall.SIGSEGV: "Memory fault",
	syscall.SIGSYS:  "Bad system call",
	syscall.SIGALRM: "Alarm clock",
	syscall.SIGTERM: "Terminated",
}

func signalMessage(sig syscall.Signal) string {
	if msg, ok := signalMessages[sig]; ok {
		return msg
	}
	return fmt.Sprintf("Sig %d", int(sig))
}

// waitFor reaps children until pid has terminated and returns its status.
// With pid -1 it reaps until there are no children left. Abnormal
// terminations of any child reaped along the way are reported.
func (fm *frame) waitFor(pid int) (int, bool) {
	status := 0
	for {
		var ws syscall.WaitStatus
		wpid, err := syscall.Wait4(-1, &ws, 0, nil)
		if err == syscall.EINTR {
			continue
		}
		if err != nil {
			// ECHILD: nothing left to wait for.
			return status, true
		}
		if wpid == pid {
			status = exitStatus(ws)
		}
		if fm.abnormal(wpid, pid, ws) && !fm.opts.Interactive {
			return exitStatus(ws), false
		}
		if wpid == pid {
			return status, true
		}
	}
}

// abnormal reports a child killed by a signal. Death by SIGPIPE is normal
// for the producing end of a pipe and is not reported.
func (fm *frame) abnormal(wpid, awaited int, ws syscall.WaitStatus) bool {
	if !ws.Signaled() || ws.Signal() == syscall.SIGPIPE {
		return false
	}
	msg := signalMessage(ws.Signal())
	if msg != "" {
		if wpid != awaited {
			msg = fmt.Sprintf("%d: %s", wpid, msg)
		}
		if ws.CoreDump() {
			msg += " -- Core dumped"
		}
	}
	fm.diag(msg)
	return true
}

func exitStatus(ws syscall.WaitStatus) int {
	switch {
	case ws.Exited():
		return ws.ExitStatus()
	case ws.Signaled():
		return StatusSignalBase + int(ws.Signal())
	default:
		return StatusWaitOther
	}
}
