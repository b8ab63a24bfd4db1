package audit

import (
	"fmt"
	"log"
	"strings"
	"sync"
	"time"
)

// 固定系统组件 actor 名称
const (
	ActorSystem         = "System"
	ActorLocalStorage   = "LocalStorage"
	ActorCloudStorage   = "CloudStorage"
	ActorWebDAVStorage  = "WebDAVStorage"
	ActorImageProcessor = "ImageProcessor"
)

// Entry 审计条目，追加后不可变
type Entry struct {
	Timestamp time.Time `json:"timestamp"`
	Actor     string    `json:"actor"`
	Action    string    `json:"action"`
}

// String 渲染为对外日志格式: [ISO-8601 timestamp] actor: action
func (e Entry) String() string {
	return fmt.Sprintf("[%s] %s: %s", e.Timestamp.Format(time.RFC3339), e.Actor, e.Action)
}

// Log 进程级追加审计日志
// 进程启动时为空，进程结束时销毁，不提供持久化保证。
// 并发追加下不丢失、不乱序。
type Log struct {
	mu      sync.RWMutex
	entries []Entry
}

// NewLog 创建空审计日志
func NewLog() *Log {
	return &Log{}
}

// Append 追加一条审计记录并打点时间戳
func (l *Log) Append(actor, action string) {
	entry := Entry{
		Timestamp: time.Now(),
		Actor:     actor,
		Action:    action,
	}

	l.mu.Lock()
	l.entries = append(l.entries, entry)
	l.mu.Unlock()

	log.Println(entry.String())
}

// Entries 返回调用时刻的快照
func (l *Log) Entries() []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	snapshot := make([]Entry, len(l.entries))
	copy(snapshot, l.entries)
	return snapshot
}

// EntriesForActor 返回渲染行中包含 actorID 的条目
// 注意这是对渲染行的子串匹配，不是结构化的 actor 相等比较：
// 若 actorID 恰好是其他 actor 或 action 文本的子串，也会被选中。
func (l *Log) EntriesForActor(actorID string) []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var result []Entry
	for _, entry := range l.entries {
		if strings.Contains(entry.String(), actorID) {
			result = append(result, entry)
		}
	}
	return result
}

// Len 返回当前条目数量
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}
