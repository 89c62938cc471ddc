package service

import (
	"log"
	"sync"
	"time"
)

type PeriodicTask struct {
	handler  func()
	interval time.Duration
}

type PeriodicService struct {
	mu    sync.Mutex
	tasks []PeriodicTask
}

var periodic = &PeriodicService{tasks: make([]PeriodicTask, 0)}

// RegisterPeriodicService 注册一个按固定间隔执行的后台任务。
// 任务 panic 只记录日志，不影响调度。
func RegisterPeriodicService(fn func(), interval time.Duration) {
	periodic.mu.Lock()
	periodic.tasks = append(periodic.tasks, PeriodicTask{fn, interval})
	periodic.mu.Unlock()

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for range ticker.C {
			func() {
				defer func() {
					if r := recover(); r != nil {
						log.Println("Periodic service panic:", r)
					}
				}()
				fn()
			}()
		}
	}()
}

// RunAll 立刻触发一轮所有已注册任务
func RunAll() {
	periodic.mu.Lock()
	defer periodic.mu.Unlock()
	for _, task := range periodic.tasks {
		go task.handler()
	}
}
