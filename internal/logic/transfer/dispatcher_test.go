package transfer

import (
	"testing"

	"nico-interface-sol/internal/consts"
	"nico-interface-sol/internal/logic/accounts"
	"nico-interface-sol/internal/logic/domain"
	"nico-interface-sol/internal/logic/pda"
	"nico-interface-sol/internal/logic/standard/nifty"
	"nico-interface-sol/internal/logic/standard/tokenmeta"
	"nico-interface-sol/internal/types"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var callerProgram = pk(0xca)

func pk(b byte) types.Pubkey {
	var p types.Pubkey
	p[0] = b
	p[31] = b
	return p
}

func wallet(key types.Pubkey, signer bool) *domain.AccountInfo {
	return &domain.AccountInfo{Key: key, Owner: consts.SystemProgram, IsSigner: signer, IsWritable: true}
}

// poolFor 按 AuxiliaryAddresses 构造账户池，data 为需要填充数据的账户
func poolFor(t *testing.T, handle *domain.AssetHandle, recipient types.Pubkey, ruleSet *types.Pubkey, data map[types.Pubkey][]byte) []*domain.AccountInfo {
	addrs, err := AuxiliaryAddresses(handle, recipient, ruleSet)
	require.NoError(t, err)

	pool := make([]*domain.AccountInfo, 0, len(addrs))
	for _, addr := range addrs {
		if _, ok := accounts.Find(pool, addr); ok {
			continue
		}
		pool = append(pool, &domain.AccountInfo{Key: addr, IsWritable: true, Data: data[addr]})
	}
	return pool
}

func request(pool []*domain.AccountInfo) *domain.TransferRequest {
	return &domain.TransferRequest{
		Payer:     wallet(pk(0x70), true),
		Recipient: wallet(pk(0x71), false),
		Pool:      pool,
	}
}

func niftyAsset(standard nifty.Standard, group *types.Pubkey) []byte {
	return nifty.EncodeAsset(&nifty.Asset{Standard: standard, Owner: pk(0x70), Group: group, Authority: pk(3)})
}

func programmableMetadata(t *testing.T, mint types.Pubkey, ruleSet *types.Pubkey) []byte {
	std := tokenmeta.TokenStandardProgrammableNonFungible
	md := &tokenmeta.Metadata{
		Key:           tokenmeta.KeyMetadataV1,
		Mint:          mint,
		Data:          tokenmeta.Data{Name: "pnft"},
		TokenStandard: &std,
	}
	if ruleSet != nil {
		md.ProgrammableConfig = &tokenmeta.ProgrammableConfig{}
		md.ProgrammableConfig.V1.RuleSet = ruleSet
	}
	raw, err := tokenmeta.EncodeMetadata(md)
	require.NoError(t, err)
	return raw
}

func programmableHandle(mint types.Pubkey, owner, tokenAccount *types.Pubkey) *domain.AssetHandle {
	return domain.NewLegacyMintHandle(mint, consts.TokenProgram, nil, domain.MetadataProgrammable,
		domain.MintContext{CurrentOwner: owner, CurrentTokenAccount: tokenAccount})
}

func TestTransfer_Record(t *testing.T) {
	group := pk(0x20)
	handle := domain.NewRecordHandle(pk(1), consts.NiftyAssetProgram, &group)
	pool := poolFor(t, handle, pk(0x71), nil, map[types.Pubkey][]byte{
		pk(1): niftyAsset(nifty.StandardNonFungible, &group),
	})

	rec := NewCpiRecorder(callerProgram)
	req := request(pool)
	require.NoError(t, NewDispatcher(rec).Transfer(handle, req))

	require.Len(t, rec.Invocations(), 1)
	ix := rec.Invocations()[0].Instruction
	assert.Equal(t, consts.NiftyAssetProgram, ix.ProgramID)
	assert.Equal(t, pk(1), ix.Accounts[0].PubKey)
	assert.Equal(t, req.Payer.Key, ix.Accounts[1].PubKey, "未给出 authority 时由 payer 签名")
	assert.Equal(t, req.Recipient.Key, ix.Accounts[2].PubKey)
	assert.Equal(t, group, ix.Accounts[3].PubKey)

	asset, _ := accounts.Find(pool, pk(1))
	assert.False(t, asset.Borrowed())
}

func TestTransfer_RecordWithAuthority(t *testing.T) {
	handle := domain.NewRecordHandle(pk(1), consts.NiftyAssetProgram, nil)
	pool := poolFor(t, handle, pk(0x71), nil, map[types.Pubkey][]byte{
		pk(1): niftyAsset(nifty.StandardNonFungible, nil),
	})

	rec := NewCpiRecorder(callerProgram)
	req := request(pool)
	req.Authority = wallet(pk(0x72), true)
	require.NoError(t, NewDispatcher(rec).Transfer(handle, req))

	ix := rec.Invocations()[0].Instruction
	assert.Equal(t, pk(0x72), ix.Accounts[1].PubKey)
	assert.Equal(t, consts.NiftyAssetProgram, ix.Accounts[3].PubKey)
}

// 资产数据比最小长度短 1 字节时直接失败，不会发起外部调用
func TestTransfer_RecordInvalidLayout(t *testing.T) {
	handle := domain.NewRecordHandle(pk(1), consts.NiftyAssetProgram, nil)

	for name, data := range map[string][]byte{
		"short":   niftyAsset(nifty.StandardNonFungible, nil)[:nifty.AssetLen-1],
		"not nft": niftyAsset(nifty.StandardSoulbound, nil),
		"empty":   nil,
	} {
		t.Run(name, func(t *testing.T) {
			pool := poolFor(t, handle, pk(0x71), nil, map[types.Pubkey][]byte{pk(1): data})
			rec := NewCpiRecorder(callerProgram)

			err := NewDispatcher(rec).Transfer(handle, request(pool))
			require.ErrorIs(t, err, domain.ErrInvalidAssetLayout)
			assert.Empty(t, rec.Invocations())

			asset, _ := accounts.Find(pool, pk(1))
			assert.False(t, asset.Borrowed(), "失败路径同样释放借用")
		})
	}
}

// Core 资产无 collection 时 collection 位以程序 id 占位
func TestTransfer_CompactWithoutCollection(t *testing.T) {
	handle := domain.NewCompactHandle(pk(1), consts.MplCoreProgram, domain.UpdateAuthority{Kind: domain.UpdateAuthorityAddress, Address: pk(5)})
	pool := poolFor(t, handle, pk(0x71), nil, nil)

	rec := NewCpiRecorder(callerProgram)
	req := request(pool)
	require.NoError(t, NewDispatcher(rec).Transfer(handle, req))

	require.Len(t, rec.Invocations(), 1)
	ix := rec.Invocations()[0].Instruction
	assert.Equal(t, consts.MplCoreProgram, ix.ProgramID)
	assert.Equal(t, pk(1), ix.Accounts[0].PubKey)
	assert.Equal(t, consts.MplCoreProgram, ix.Accounts[1].PubKey, "collection = None")
	assert.Equal(t, req.Payer.Key, ix.Accounts[2].PubKey)
	assert.Equal(t, consts.MplCoreProgram, ix.Accounts[3].PubKey, "authority = None")
	assert.Equal(t, req.Recipient.Key, ix.Accounts[4].PubKey)
}

func TestTransfer_CompactWithCollection(t *testing.T) {
	collection := pk(0x30)
	handle := domain.NewCompactHandle(pk(1), consts.MplCoreProgram, domain.UpdateAuthority{Kind: domain.UpdateAuthorityCollection, Address: collection})
	pool := poolFor(t, handle, pk(0x71), nil, nil)

	rec := NewCpiRecorder(callerProgram)
	req := request(pool)
	req.Authority = wallet(pk(0x72), true)
	require.NoError(t, NewDispatcher(rec).Transfer(handle, req))

	ix := rec.Invocations()[0].Instruction
	assert.Equal(t, collection, ix.Accounts[1].PubKey)
	assert.Equal(t, pk(0x72), ix.Accounts[3].PubKey)
	assert.True(t, ix.Accounts[3].IsSigner)
}

func TestTransfer_CompactComponentMismatch(t *testing.T) {
	fake := pk(0x99)
	handle := domain.NewCompactHandle(pk(1), fake, domain.UpdateAuthority{})
	pool := poolFor(t, handle, pk(0x71), nil, nil)

	err := NewDispatcher(NewCpiRecorder(callerProgram)).Transfer(handle, request(pool))
	require.ErrorIs(t, err, domain.ErrComponentMismatch)
	var accErr *domain.AccountError
	require.ErrorAs(t, err, &accErr)
	assert.Equal(t, "incoming_asset_program", accErr.Label)
	assert.Equal(t, fake, accErr.Address)
}

func TestTransfer_MissingGroup(t *testing.T) {
	group := pk(0x20)
	handle := domain.NewRecordHandle(pk(1), consts.NiftyAssetProgram, &group)
	pool := poolFor(t, handle, pk(0x71), nil, map[types.Pubkey][]byte{
		pk(1): niftyAsset(nifty.StandardNonFungible, &group),
	})
	// 去掉 group 账户
	pool = pool[1:]

	err := NewDispatcher(NewCpiRecorder(callerProgram)).Transfer(handle, request(pool))
	require.ErrorIs(t, err, domain.ErrMissingAccount)
	var accErr *domain.AccountError
	require.ErrorAs(t, err, &accErr)
	assert.Equal(t, "group", accErr.Label)
	assert.Equal(t, group, accErr.Address)
}

// 缺少持有账户上下文时，在解析任何账户之前失败
func TestTransfer_ProgrammableMissingContext(t *testing.T) {
	owner := pk(0x40)
	group := pk(0x20)
	handle := domain.NewLegacyMintHandle(pk(1), consts.TokenProgram, &group, domain.MetadataProgrammable,
		domain.MintContext{CurrentOwner: &owner})

	rec := NewCpiRecorder(callerProgram)
	err := NewDispatcher(rec).Transfer(handle, request(nil))
	require.ErrorIs(t, err, domain.ErrMissingTransferContext)
	assert.NotErrorIs(t, err, domain.ErrMissingAccount)
	assert.Empty(t, rec.Invocations())

	tokenAccount := pk(0x41)
	handle = programmableHandle(pk(1), nil, &tokenAccount)
	err = NewDispatcher(rec).Transfer(handle, request(nil))
	require.ErrorIs(t, err, domain.ErrMissingTransferContext)
}

// 无规则集的 pNFT：auth_rules 为空，其余固定账户全部解析
func TestTransfer_ProgrammableWithoutRuleSet(t *testing.T) {
	mint, owner, tokenAccount := pk(1), pk(0x40), pk(0x41)
	handle := programmableHandle(mint, &owner, &tokenAccount)
	metadataAddr, _ := pda.MetadataAddress(mint)
	pool := poolFor(t, handle, pk(0x71), nil, map[types.Pubkey][]byte{
		metadataAddr: programmableMetadata(t, mint, nil),
	})

	rec := NewCpiRecorder(callerProgram)
	req := request(pool)
	require.NoError(t, NewDispatcher(rec).Transfer(handle, req))
	require.Len(t, rec.Invocations(), 1)

	ix := rec.Invocations()[0].Instruction
	require.Len(t, ix.Accounts, 17)
	assert.Equal(t, consts.TokenMetaProgram, ix.ProgramID)
	assert.Equal(t, []byte{tokenmeta.InstructionTransfer, 0, 1, 0, 0, 0, 0, 0, 0, 0, 0}, ix.Data)

	editionAddr, _ := pda.EditionAddress(mint)
	targetToken, _ := pda.AssociatedTokenAddress(req.Recipient.Key, mint, consts.TokenProgram)
	sourceRecord, _ := pda.TokenRecordAddress(mint, tokenAccount)
	targetRecord, _ := pda.TokenRecordAddress(mint, targetToken)

	assert.Equal(t, tokenAccount, ix.Accounts[0].PubKey)
	assert.Equal(t, owner, ix.Accounts[1].PubKey)
	assert.Equal(t, targetToken, ix.Accounts[2].PubKey)
	assert.Equal(t, req.Recipient.Key, ix.Accounts[3].PubKey)
	assert.Equal(t, mint, ix.Accounts[4].PubKey)
	assert.Equal(t, metadataAddr, ix.Accounts[5].PubKey)
	assert.Equal(t, editionAddr, ix.Accounts[6].PubKey)
	assert.Equal(t, sourceRecord, ix.Accounts[7].PubKey)
	assert.Equal(t, targetRecord, ix.Accounts[8].PubKey)
	assert.Equal(t, req.Payer.Key, ix.Accounts[9].PubKey)
	assert.Equal(t, req.Payer.Key, ix.Accounts[10].PubKey)
	assert.Equal(t, consts.TokenProgram, ix.Accounts[13].PubKey)
	assert.Equal(t, consts.AuthRulesProgram, ix.Accounts[15].PubKey)
	assert.Equal(t, consts.TokenMetaProgram, ix.Accounts[16].PubKey, "auth_rules = None")

	md, _ := accounts.Find(pool, metadataAddr)
	assert.False(t, md.Borrowed())
}

func TestTransfer_ProgrammableWithRuleSet(t *testing.T) {
	mint, owner, tokenAccount, ruleSet := pk(1), pk(0x40), pk(0x41), pk(0x50)
	handle := programmableHandle(mint, &owner, &tokenAccount)
	metadataAddr, _ := pda.MetadataAddress(mint)
	data := map[types.Pubkey][]byte{metadataAddr: programmableMetadata(t, mint, &ruleSet)}

	pool := poolFor(t, handle, pk(0x71), &ruleSet, data)
	rec := NewCpiRecorder(callerProgram)
	require.NoError(t, NewDispatcher(rec).Transfer(handle, request(pool)))
	assert.Equal(t, ruleSet, rec.Invocations()[0].Instruction.Accounts[16].PubKey)

	// 规则集账户不在池中
	pool = poolFor(t, handle, pk(0x71), nil, data)
	err := NewDispatcher(NewCpiRecorder(callerProgram)).Transfer(handle, request(pool))
	require.ErrorIs(t, err, domain.ErrMissingAccount)
	var accErr *domain.AccountError
	require.ErrorAs(t, err, &accErr)
	assert.Equal(t, "auth_rule", accErr.Label)
	assert.Equal(t, ruleSet, accErr.Address)
}

func TestTransfer_ProgrammableMissingAccounts(t *testing.T) {
	mint, owner, tokenAccount := pk(1), pk(0x40), pk(0x41)
	handle := programmableHandle(mint, &owner, &tokenAccount)
	metadataAddr, _ := pda.MetadataAddress(mint)
	full := poolFor(t, handle, pk(0x71), nil, map[types.Pubkey][]byte{
		metadataAddr: programmableMetadata(t, mint, nil),
	})

	// 逐个移除池中账户，每次都应以 MissingAccount 失败
	for i := range full {
		pool := make([]*domain.AccountInfo, 0, len(full)-1)
		pool = append(pool, full[:i]...)
		pool = append(pool, full[i+1:]...)

		err := NewDispatcher(NewCpiRecorder(callerProgram)).Transfer(handle, request(pool))
		require.ErrorIs(t, err, domain.ErrMissingAccount, "removed %s", full[i].Key.ToBase58())
	}
}

func TestTransfer_ProgrammableBadMetadata(t *testing.T) {
	mint, owner, tokenAccount := pk(1), pk(0x40), pk(0x41)
	handle := programmableHandle(mint, &owner, &tokenAccount)
	metadataAddr, _ := pda.MetadataAddress(mint)
	pool := poolFor(t, handle, pk(0x71), nil, map[types.Pubkey][]byte{metadataAddr: {0x01}})

	err := NewDispatcher(NewCpiRecorder(callerProgram)).Transfer(handle, request(pool))
	assert.ErrorIs(t, err, domain.ErrDeserialization)
}

func TestTransfer_ProgrammableTokenProgramMismatch(t *testing.T) {
	mint, owner, tokenAccount := pk(1), pk(0x40), pk(0x41)
	handle := domain.NewLegacyMintHandle(mint, pk(0x98), nil, domain.MetadataProgrammable,
		domain.MintContext{CurrentOwner: &owner, CurrentTokenAccount: &tokenAccount})
	metadataAddr, _ := pda.MetadataAddress(mint)
	pool := poolFor(t, handle, pk(0x71), nil, map[types.Pubkey][]byte{
		metadataAddr: programmableMetadata(t, mint, nil),
	})

	err := NewDispatcher(NewCpiRecorder(callerProgram)).Transfer(handle, request(pool))
	require.ErrorIs(t, err, domain.ErrComponentMismatch)
	var accErr *domain.AccountError
	require.ErrorAs(t, err, &accErr)
	assert.Equal(t, "token_program", accErr.Label)
}

// 每种句柄变体恰好选择一个适配器，或返回明确的错误
func TestSelectRoute_Completeness(t *testing.T) {
	owner, tokenAccount := pk(0x40), pk(0x41)
	full := domain.MintContext{CurrentOwner: &owner, CurrentTokenAccount: &tokenAccount}

	cases := []struct {
		name    string
		handle  *domain.AssetHandle
		want    routeKind
		wantErr error
	}{
		{"record", domain.NewRecordHandle(pk(1), consts.NiftyAssetProgram, nil), routeRecord, nil},
		{"compact", domain.NewCompactHandle(pk(1), consts.MplCoreProgram, domain.UpdateAuthority{}), routeCompact, nil},
		{"programmable", domain.NewLegacyMintHandle(pk(1), consts.TokenProgram, nil, domain.MetadataProgrammable, full), routeProgrammable, nil},
		{"programmable no context", domain.NewLegacyMintHandle(pk(1), consts.TokenProgram, nil, domain.MetadataProgrammable, domain.MintContext{}), 0, domain.ErrMissingTransferContext},
		{"non-programmable", domain.NewLegacyMintHandle(pk(1), consts.TokenProgram, nil, domain.MetadataNonProgrammable, full), 0, domain.ErrUnsupportedTransferPath},
		{"extension", domain.NewLegacyMintHandle(pk(1), consts.TokenProgram2022, nil, domain.MetadataExtensionBased, full), 0, domain.ErrUnsupportedTransferPath},
		{"unknown", domain.NewLegacyMintHandle(pk(1), consts.TokenProgram, nil, domain.MetadataUnknown, full), 0, domain.ErrUnsupportedTransferPath},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			r, err := selectRoute(c.handle)
			if c.wantErr != nil {
				assert.ErrorIs(t, err, c.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, c.want, r.kind)
		})
	}
}

func TestTransfer_UnsupportedPathGoesNowhere(t *testing.T) {
	rec := NewCpiRecorder(callerProgram)
	handle := domain.NewLegacyMintHandle(pk(1), consts.TokenProgram, nil, domain.MetadataNonProgrammable, domain.MintContext{})
	err := NewDispatcher(rec).Transfer(handle, request(nil))
	assert.ErrorIs(t, err, domain.ErrUnsupportedTransferPath)
	assert.Empty(t, rec.Invocations())

	_, err = AuxiliaryAddresses(handle, pk(0x71), nil)
	assert.ErrorIs(t, err, domain.ErrUnsupportedTransferPath)
}

func TestTransfer_NilInputs(t *testing.T) {
	d := NewDispatcher(NewCpiRecorder(callerProgram))
	handle := domain.NewRecordHandle(pk(1), consts.NiftyAssetProgram, nil)

	assert.ErrorIs(t, d.Transfer(nil, request(nil)), domain.ErrMissingAccount)
	assert.ErrorIs(t, d.Transfer(handle, nil), domain.ErrMissingAccount)
	assert.ErrorIs(t, d.Transfer(handle, &domain.TransferRequest{Payer: wallet(pk(0x70), true)}), domain.ErrMissingAccount)
}

// 由 PDA 作为 authority 时，通过 signer seeds 授权
func TestTransfer_PDAAuthority(t *testing.T) {
	authority, bump, err := common.FindProgramAddress([][]byte{[]byte("escrow")}, callerProgram)
	require.NoError(t, err)
	seeds := [][][]byte{{[]byte("escrow"), {bump}}}

	handle := domain.NewRecordHandle(pk(1), consts.NiftyAssetProgram, nil)
	pool := poolFor(t, handle, pk(0x71), nil, map[types.Pubkey][]byte{
		pk(1): niftyAsset(nifty.StandardNonFungible, nil),
	})

	rec := NewCpiRecorder(callerProgram)
	req := request(pool)
	req.Authority = wallet(authority, false)
	req.SignerSeeds = seeds
	require.NoError(t, NewDispatcher(rec).Transfer(handle, req))
	assert.Equal(t, seeds, rec.Invocations()[0].SignerSeeds)

	// 没有 seeds 时 PDA 无法签名
	req.SignerSeeds = nil
	err = NewDispatcher(rec).Transfer(handle, req)
	assert.ErrorIs(t, err, domain.ErrPrivilegeEscalation)
}

// 当前持有人就是 payer 或 authority 时，池中的持有人副本不带签名权限也能转账
func TestTransfer_ProgrammableOwnerSigns(t *testing.T) {
	mint, tokenAccount := pk(1), pk(0x41)
	metadataAddr, _ := pda.MetadataAddress(mint)

	t.Run("owner is payer", func(t *testing.T) {
		owner := pk(0x70)
		handle := programmableHandle(mint, &owner, &tokenAccount)
		pool := poolFor(t, handle, pk(0x71), nil, map[types.Pubkey][]byte{
			metadataAddr: programmableMetadata(t, mint, nil),
		})
		ownerCopy, ok := accounts.Find(pool, owner)
		require.True(t, ok)
		require.False(t, ownerCopy.IsSigner)

		rec := NewCpiRecorder(callerProgram)
		require.NoError(t, NewDispatcher(rec).Transfer(handle, request(pool)))
		ix := rec.Invocations()[0].Instruction
		assert.Equal(t, owner, ix.Accounts[1].PubKey)
		assert.Equal(t, owner, ix.Accounts[9].PubKey)
		assert.True(t, ix.Accounts[9].IsSigner)
	})

	t.Run("owner is authority", func(t *testing.T) {
		owner := pk(0x72)
		handle := programmableHandle(mint, &owner, &tokenAccount)
		pool := poolFor(t, handle, pk(0x71), nil, map[types.Pubkey][]byte{
			metadataAddr: programmableMetadata(t, mint, nil),
		})

		rec := NewCpiRecorder(callerProgram)
		req := request(pool)
		req.Authority = wallet(owner, true)
		require.NoError(t, NewDispatcher(rec).Transfer(handle, req))
		ix := rec.Invocations()[0].Instruction
		assert.Equal(t, owner, ix.Accounts[9].PubKey)
		assert.Equal(t, req.Payer.Key, ix.Accounts[10].PubKey)
	})

	t.Run("owner in pool is never granted by itself", func(t *testing.T) {
		owner := pk(0x72)
		handle := programmableHandle(mint, &owner, &tokenAccount)
		pool := poolFor(t, handle, pk(0x71), nil, map[types.Pubkey][]byte{
			metadataAddr: programmableMetadata(t, mint, nil),
		})
		req := request(pool)
		req.Authority = wallet(owner, false)
		err := NewDispatcher(NewCpiRecorder(callerProgram)).Transfer(handle, req)
		assert.ErrorIs(t, err, domain.ErrPrivilegeEscalation)
	})
}
