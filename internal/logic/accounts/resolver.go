package accounts

import (
	"nico-interface-sol/internal/logic/domain"
	"nico-interface-sol/internal/types"
)

// 账户池规模受交易大小限制（通常几十个），线性扫描即可，无需建立索引。
// 池内地址唯一性由调用方保证，出现重复时以第一个命中为准。

// Find 在账户池中按地址查找账户
func Find(pool []*domain.AccountInfo, address types.Pubkey) (*domain.AccountInfo, bool) {
	for _, acc := range pool {
		if acc != nil && acc.Key == address {
			return acc, true
		}
	}
	return nil, false
}

// Require 同 Find，找不到时返回 MissingAccount(label, address)
func Require(pool []*domain.AccountInfo, address types.Pubkey, label string) (*domain.AccountInfo, error) {
	if acc, ok := Find(pool, address); ok {
		return acc, nil
	}
	return nil, domain.MissingAccount(label, address)
}

// FindSnapshot 在快照集合中按地址查找，不存在的账户（空快照）视为未命中
func FindSnapshot(snapshots []domain.AccountSnapshot, address types.Pubkey) (domain.AccountSnapshot, bool) {
	for _, s := range snapshots {
		if s.Address == address && s.Exists() {
			return s, true
		}
	}
	return domain.AccountSnapshot{}, false
}
