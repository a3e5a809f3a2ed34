package utils

import (
	"encoding/binary"
	"errors"
	"fmt"

	"nico-interface-sol/internal/logic/domain"
	"nico-interface-sol/internal/types"

	"github.com/near/borsh-go"
)

// RecordTypeAsset 资产识别记录的类型前缀
const RecordTypeAsset uint32 = 1

// AssetRecord 为一次识别结果的可发布形式
type AssetRecord struct {
	Address             types.Pubkey
	OwningComponent     types.Pubkey
	Standard            uint8
	Group               *types.Pubkey
	MetadataKind        uint8         // 仅 legacy mint
	UpdateAuthorityKind uint8         // 仅 Core
	UpdateAuthority     *types.Pubkey // 仅 Core，Kind 为 None 时为空
	ObservedAt          int64         // 识别时间（unix 秒）
}

// NewAssetRecord 从句柄拷贝出可发布字段
func NewAssetRecord(h *domain.AssetHandle, observedAt int64) AssetRecord {
	r := AssetRecord{
		Address:         h.Address(),
		OwningComponent: h.OwningComponent(),
		ObservedAt:      observedAt,
	}
	if g, ok := h.Group(); ok {
		r.Group = &g
	}
	switch v := h.Variant().(type) {
	case domain.CompactAsset:
		r.UpdateAuthorityKind = uint8(v.UpdateAuthority.Kind)
		if v.UpdateAuthority.Kind != domain.UpdateAuthorityNone {
			ua := v.UpdateAuthority.Address
			r.UpdateAuthority = &ua
		}
	case domain.LegacyMint:
		r.MetadataKind = uint8(v.MetadataKind)
	}
	r.Standard = uint8(h.Variant().Standard())
	return r
}

// SameIdentity 比较除 ObservedAt 之外的字段，用于判断识别结果是否变化
func (r AssetRecord) SameIdentity(o AssetRecord) bool {
	return r.Address == o.Address &&
		r.OwningComponent == o.OwningComponent &&
		r.Standard == o.Standard &&
		equalPubkeyPtr(r.Group, o.Group) &&
		r.MetadataKind == o.MetadataKind &&
		r.UpdateAuthorityKind == o.UpdateAuthorityKind &&
		equalPubkeyPtr(r.UpdateAuthority, o.UpdateAuthority)
}

func equalPubkeyPtr(a, b *types.Pubkey) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// EncodeAssetRecord 编码为带类型前缀的二进制数据：
// - 前 4 字节为记录类型（uint32，小端序）
// - 后续为 borsh 序列化数据
func EncodeAssetRecord(r AssetRecord) ([]byte, error) {
	payload, err := borsh.Serialize(r)
	if err != nil {
		return nil, fmt.Errorf("EncodeAssetRecord: %w", err)
	}
	buf := make([]byte, 4, 4+len(payload))
	binary.LittleEndian.PutUint32(buf, RecordTypeAsset)
	return append(buf, payload...), nil
}

// DecodeAssetRecord 为 EncodeAssetRecord 的逆操作
func DecodeAssetRecord(data []byte) (AssetRecord, error) {
	if len(data) < 4 {
		return AssetRecord{}, errors.New("DecodeAssetRecord: data too short")
	}
	if t := binary.LittleEndian.Uint32(data[:4]); t != RecordTypeAsset {
		return AssetRecord{}, fmt.Errorf("DecodeAssetRecord: unexpected record type %d", t)
	}
	var r AssetRecord
	if err := borsh.Deserialize(&r, data[4:]); err != nil {
		return AssetRecord{}, fmt.Errorf("DecodeAssetRecord: %w", err)
	}
	return r, nil
}
