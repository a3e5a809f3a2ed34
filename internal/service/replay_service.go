package service

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"nico-interface-sol/internal/config"
	"nico-interface-sol/internal/logic/domain"
	"nico-interface-sol/internal/mq"
	"nico-interface-sol/internal/pkg/logger"
	"nico-interface-sol/internal/types"
	"nico-interface-sol/internal/utils"
)

// ReplayService 周期性识别观察列表中的资产，识别结果变化时发布到 Kafka
type ReplayService struct {
	resolver    *AssetResolver
	producer    mq.Producer // 为空时只记录日志
	topic       string
	partitions  int
	assets      []types.Pubkey
	interval    time.Duration
	sendTimeout time.Duration

	mu   sync.Mutex
	last map[types.Pubkey]utils.AssetRecord

	runMu sync.Mutex  // 一轮回放期间持有，Stop 借此等待进行中的回放
	timer *time.Timer // 下一轮回放的定时器，受 runMu 保护

	stopChan chan struct{}
	ctx      context.Context
	cancel   func(err error)
	now      func() time.Time
}

func NewReplayService(cfg config.Config, resolver *AssetResolver, producer mq.Producer) (*ReplayService, error) {
	assets, err := types.PubkeysFromBase58(cfg.ReplayConf.Assets)
	if err != nil {
		return nil, fmt.Errorf("[ReplayService] invalid replay.assets: %w", err)
	}

	ctx, cancel := context.WithCancelCause(context.Background())
	return &ReplayService{
		resolver:    resolver,
		producer:    producer,
		topic:       cfg.KafkaProducerConf.Topic,
		partitions:  cfg.KafkaProducerConf.Partitions,
		assets:      assets,
		interval:    time.Duration(cfg.ReplayConf.IntervalSec) * time.Second,
		sendTimeout: time.Duration(cfg.ReplayConf.SendTimeoutMs) * time.Millisecond,
		last:        make(map[types.Pubkey]utils.AssetRecord, len(assets)),
		stopChan:    make(chan struct{}),
		ctx:         ctx,
		cancel:      cancel,
		now:         time.Now,
	}, nil
}

func (s *ReplayService) Start() {
	logger.Infof("[ReplayService] started, assets=%d, interval=%v", len(s.assets), s.interval)
	s.runOnce("首次回放失败")
	<-s.stopChan
}

// runOnce 执行一轮回放并安排下一轮；已停止时直接返回
func (s *ReplayService) runOnce(failMsg string) {
	s.runMu.Lock()
	defer s.runMu.Unlock()
	if s.ctx.Err() != nil {
		return
	}
	if err := s.update(); err != nil {
		logger.Warnf("[ReplayService] %s: %v", failMsg, err)
	}
	if s.ctx.Err() != nil {
		return
	}
	s.timer = time.AfterFunc(s.interval, func() {
		s.runOnce("周期性回放失败")
	})
}

// Stop 取消定时器并等待进行中的回放结束，返回后不会再使用 producer
func (s *ReplayService) Stop() {
	s.cancel(errors.New("ReplayService stop"))

	s.runMu.Lock()
	defer s.runMu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
	}
	select {
	case <-s.stopChan:
	default:
		close(s.stopChan)
	}
}

// update 执行一轮回放；单个资产识别失败只记日志，不影响其他资产
func (s *ReplayService) update() (err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Errorf("[ReplayService] update panic: %v\n%s", r, debug.Stack())
			err = fmt.Errorf("update panic: %v", r)
		}
	}()

	changed := make([]utils.AssetRecord, 0)
	for _, asset := range s.assets {
		res, err := s.resolver.Resolve(s.ctx, asset, domain.MintContext{})
		if err != nil {
			logger.Warnf("[ReplayService] resolve failed, asset=%s, err=%v", asset.ToBase58(), err)
			continue
		}
		rec := utils.NewAssetRecord(res.Handle, s.now().Unix())

		s.mu.Lock()
		prev, seen := s.last[asset]
		s.mu.Unlock()
		if seen && prev.SameIdentity(rec) {
			continue
		}
		changed = append(changed, rec)
	}
	if len(changed) == 0 {
		return nil
	}
	return s.publish(changed)
}

func (s *ReplayService) publish(records []utils.AssetRecord) error {
	if s.producer == nil {
		for _, rec := range records {
			logger.Infof("[ReplayService] asset changed, asset=%s, standard=%d", rec.Address.ToBase58(), rec.Standard)
			s.remember(rec)
		}
		return nil
	}

	jobs := make([]*mq.KafkaJob, 0, len(records))
	byJob := make(map[*mq.KafkaJob]utils.AssetRecord, len(records))
	for _, rec := range records {
		value, err := utils.EncodeAssetRecord(rec)
		if err != nil {
			logger.Errorf("[ReplayService] encode failed, asset=%s, err=%v", rec.Address.ToBase58(), err)
			continue
		}
		job := &mq.KafkaJob{
			Topic:     s.topic,
			Partition: utils.AssetPartition(rec.Address, s.partitions),
			Key:       rec.Address.Bytes(),
			Value:     value,
		}
		jobs = append(jobs, job)
		byJob[job] = rec
	}

	ok, failed := mq.SendKafkaJobs(s.ctx, s.producer, jobs, s.sendTimeout)
	for _, job := range ok {
		s.remember(byJob[job])
	}
	for _, f := range failed {
		logger.Warnf("[ReplayService] send failed, asset=%s, err=%v", types.EncodeBase58(f.Job.Key), f.Err)
	}
	logger.Infof("[ReplayService] published %d/%d records", len(ok), len(jobs))
	if len(failed) > 0 {
		return fmt.Errorf("%d records failed to publish", len(failed))
	}
	return nil
}

// remember 只在发布成功后记录，失败的记录下一轮重发
func (s *ReplayService) remember(rec utils.AssetRecord) {
	s.mu.Lock()
	s.last[rec.Address] = rec
	s.mu.Unlock()
}
