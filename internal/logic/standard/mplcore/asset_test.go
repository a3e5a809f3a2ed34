package mplcore

import (
	"testing"

	"nico-interface-sol/internal/consts"
	"nico-interface-sol/internal/logic/domain"
	"nico-interface-sol/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pk(b byte) types.Pubkey {
	var p types.Pubkey
	p[0] = b
	p[31] = b
	return p
}

func TestEncodeDecodeUpdateAuthority(t *testing.T) {
	cases := []domain.UpdateAuthority{
		{Kind: domain.UpdateAuthorityNone},
		{Kind: domain.UpdateAuthorityAddress, Address: pk(2)},
		{Kind: domain.UpdateAuthorityCollection, Address: pk(3)},
	}
	for _, ua := range cases {
		data, err := EncodeAsset(pk(1), ua, "core #1", "https://example.com/1.json")
		require.NoError(t, err)
		// 模拟插件区尾部数据
		data = append(data, 0xde, 0xad, 0xbe, 0xef)

		a, err := DecodeAsset(data)
		require.NoError(t, err)
		assert.Equal(t, pk(1), a.Owner)
		assert.Equal(t, "core #1", a.Name)

		got, err := a.Authority()
		require.NoError(t, err)
		assert.Equal(t, ua, got)
	}
}

func TestDecodeAssetRejectsWrongKey(t *testing.T) {
	data, err := EncodeAsset(pk(1), domain.UpdateAuthority{}, "", "")
	require.NoError(t, err)
	data[0] = KeyCollectionV1
	_, err = DecodeAsset(data)
	assert.Error(t, err)

	_, err = DecodeAsset(nil)
	assert.Error(t, err)

	_, err = DecodeAsset([]byte{KeyAssetV1, 1, 2})
	assert.Error(t, err, "截断数据应返回错误")
}

func TestTransferV1Instruction(t *testing.T) {
	ix := TransferV1Instruction(TransferV1Accounts{Asset: pk(1), Payer: pk(2), NewOwner: pk(3)})
	assert.Equal(t, consts.MplCoreProgram, ix.ProgramID)
	assert.Equal(t, []byte{InstructionTransferV1, 0}, ix.Data)
	require.Len(t, ix.Accounts, 7)
	assert.Equal(t, consts.MplCoreProgram, ix.Accounts[1].PubKey, "无 collection 时以程序 id 占位")
	assert.True(t, ix.Accounts[2].IsSigner)
	assert.True(t, ix.Accounts[2].IsWritable)
	assert.Equal(t, consts.MplCoreProgram, ix.Accounts[3].PubKey)
	assert.Equal(t, pk(3), ix.Accounts[4].PubKey)

	collection, authority := pk(4), pk(5)
	ix = TransferV1Instruction(TransferV1Accounts{
		Asset: pk(1), Collection: &collection, Payer: pk(2), Authority: &authority, NewOwner: pk(3),
	})
	assert.Equal(t, collection, ix.Accounts[1].PubKey)
	assert.Equal(t, authority, ix.Accounts[3].PubKey)
	assert.True(t, ix.Accounts[3].IsSigner)
}
