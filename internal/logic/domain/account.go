package domain

import (
	"nico-interface-sol/internal/types"
)

// AccountInfo 表示一次调用中可见的链上账户（地址、所属程序、数据与权限位）。
// 数据读取必须通过 BorrowData 获取 DataRef，并在发起外部调用前 Release；
// Invoker 会拒绝仍处于借用状态的可写账户。
type AccountInfo struct {
	Key        types.Pubkey // 账户地址
	Owner      types.Pubkey // 所属程序
	Lamports   uint64       // 余额
	Data       []byte       // 账户原始数据
	IsSigner   bool         // 是否为签名者
	IsWritable bool         // 是否可写
	Executable bool         // 是否为程序账户

	borrows int // 未释放的数据借用数量
}

// DataRef 是对账户数据的一次只读借用
type DataRef struct {
	acc      *AccountInfo
	released bool
}

// BorrowData 借用账户数据，调用方负责 Release
func (a *AccountInfo) BorrowData() *DataRef {
	a.borrows++
	return &DataRef{acc: a}
}

// Borrowed 返回账户数据是否仍有未释放的借用
func (a *AccountInfo) Borrowed() bool {
	return a.borrows > 0
}

// Snapshot 拷贝出 (地址, 所属程序, 数据) 三元组
func (a *AccountInfo) Snapshot() AccountSnapshot {
	data := make([]byte, len(a.Data))
	copy(data, a.Data)
	return AccountSnapshot{Address: a.Key, Owner: a.Owner, Data: data}
}

// Bytes 返回被借用的数据；Release 之后不应再使用
func (r *DataRef) Bytes() []byte {
	return r.acc.Data
}

// Release 释放借用，重复调用无副作用
func (r *DataRef) Release() {
	if r.released {
		return
	}
	r.released = true
	r.acc.borrows--
}

// AccountSnapshot 为预先拉取的账户快照（索引回放等离线场景使用）
type AccountSnapshot struct {
	Address types.Pubkey
	Owner   types.Pubkey
	Data    []byte
}

// Exists 快照是否对应一个已存在的账户（RPC 对不存在的账户返回空值）
func (s AccountSnapshot) Exists() bool {
	return s.Owner != (types.Pubkey{}) || len(s.Data) > 0
}
