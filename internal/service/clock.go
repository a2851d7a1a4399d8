package service

import "time"

// Clock 抽象当前时间，测试中用 testutil.StubClock 替换
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock 返回基于 time.Now 的时钟。
func SystemClock() Clock { return systemClock{} }
