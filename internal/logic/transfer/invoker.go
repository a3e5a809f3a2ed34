package transfer

import (
	"fmt"

	"nico-interface-sol/internal/logic/accounts"
	"nico-interface-sol/internal/logic/domain"
	"nico-interface-sol/internal/types"

	"github.com/blocto/solana-go-sdk/common"
	sdktypes "github.com/blocto/solana-go-sdk/types"
)

// Invoker 执行一次跨程序调用。infos 为调用方可见的账户，signerSeeds 为 PDA 签名路径
type Invoker interface {
	Invoke(ix sdktypes.Instruction, infos []*domain.AccountInfo, signerSeeds [][][]byte) error
}

// Invocation 一次已校验通过的调用记录
type Invocation struct {
	Instruction sdktypes.Instruction
	SignerSeeds [][][]byte
}

// CpiRecorder 按运行时 CPI 的规则校验调用并记录下来，不实际执行被调程序。
// 离线规划与测试使用。
type CpiRecorder struct {
	CallerProgram types.Pubkey // 发起 CPI 的程序，signer seeds 在其下推导 PDA

	invocations []Invocation
}

// NewCpiRecorder 创建以 caller 为调用方程序的记录器
func NewCpiRecorder(caller types.Pubkey) *CpiRecorder {
	return &CpiRecorder{CallerProgram: caller}
}

// Invoke 校验顺序：
//  1. 被调程序与每个指令账户都必须出现在 infos 中
//  2. 可写账户不能有未释放的数据借用，且调用方自身必须持有可写权限
//  3. 每组 signer seeds 推导出的 PDA 必须以 signer 身份出现在指令中
//  4. 要求签名的账户，调用方持有签名或由 PDA 签名
func (r *CpiRecorder) Invoke(ix sdktypes.Instruction, infos []*domain.AccountInfo, signerSeeds [][][]byte) error {
	if _, ok := accounts.Find(infos, ix.ProgramID); !ok {
		return fmt.Errorf("%w: program %s", domain.ErrAccountNotProvided, ix.ProgramID.ToBase58())
	}

	pdaSigners, err := r.verifySignerSeeds(ix, signerSeeds)
	if err != nil {
		return err
	}

	for i, meta := range ix.Accounts {
		info, ok := mergePrivileges(infos, meta.PubKey)
		if !ok {
			return fmt.Errorf("%w: #%d %s", domain.ErrAccountNotProvided, i, meta.PubKey.ToBase58())
		}
		if meta.IsWritable {
			if info.borrowed {
				return fmt.Errorf("%w: #%d %s", domain.ErrAccountBorrowed, i, meta.PubKey.ToBase58())
			}
			if !info.writable {
				return fmt.Errorf("%w: #%d %s requires writable", domain.ErrPrivilegeEscalation, i, meta.PubKey.ToBase58())
			}
		}
		if meta.IsSigner && !info.signer && !pdaSigners[meta.PubKey] {
			return fmt.Errorf("%w: #%d %s requires signer", domain.ErrPrivilegeEscalation, i, meta.PubKey.ToBase58())
		}
	}

	r.invocations = append(r.invocations, Invocation{
		Instruction: cloneInstruction(ix),
		SignerSeeds: cloneSeeds(signerSeeds),
	})
	return nil
}

// privileges 同一地址在 infos 中的合并权限
type privileges struct {
	signer   bool
	writable bool
	borrowed bool
}

// mergePrivileges 与运行时一致：同一地址出现多次时权限取并集，任一副本被借用即视为借用
func mergePrivileges(infos []*domain.AccountInfo, key types.Pubkey) (privileges, bool) {
	var p privileges
	found := false
	for _, info := range infos {
		if info == nil || info.Key != key {
			continue
		}
		found = true
		p.signer = p.signer || info.IsSigner
		p.writable = p.writable || info.IsWritable
		p.borrowed = p.borrowed || info.Borrowed()
	}
	return p, found
}

// Invocations 返回已记录调用的拷贝
func (r *CpiRecorder) Invocations() []Invocation {
	out := make([]Invocation, len(r.invocations))
	for i, inv := range r.invocations {
		out[i] = Invocation{Instruction: cloneInstruction(inv.Instruction), SignerSeeds: cloneSeeds(inv.SignerSeeds)}
	}
	return out
}

// Reset 清空记录
func (r *CpiRecorder) Reset() {
	r.invocations = nil
}

func (r *CpiRecorder) verifySignerSeeds(ix sdktypes.Instruction, signerSeeds [][][]byte) (map[types.Pubkey]bool, error) {
	signers := make(map[types.Pubkey]bool, len(signerSeeds))
	for _, seeds := range signerSeeds {
		pda, err := common.CreateProgramAddress(seeds, r.CallerProgram)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidSignerSeeds, err)
		}
		found := false
		for _, meta := range ix.Accounts {
			if meta.PubKey == pda && meta.IsSigner {
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("%w: PDA %s not found as signer in instruction", domain.ErrInvalidSignerSeeds, pda.ToBase58())
		}
		signers[pda] = true
	}
	return signers, nil
}

func cloneSeeds(seeds [][][]byte) [][][]byte {
	if seeds == nil {
		return nil
	}
	out := make([][][]byte, len(seeds))
	for i, path := range seeds {
		out[i] = make([][]byte, len(path))
		for j, seed := range path {
			out[i][j] = append([]byte(nil), seed...)
		}
	}
	return out
}

func cloneInstruction(ix sdktypes.Instruction) sdktypes.Instruction {
	metas := make([]sdktypes.AccountMeta, len(ix.Accounts))
	copy(metas, ix.Accounts)
	data := make([]byte, len(ix.Data))
	copy(data, ix.Data)
	return sdktypes.Instruction{ProgramID: ix.ProgramID, Accounts: metas, Data: data}
}
