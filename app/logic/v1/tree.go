package v1

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/samber/lo"

	"github.com/filecab/filecab/app/core"
	"github.com/filecab/filecab/pkg/errors"
	"github.com/filecab/filecab/pkg/i18n"
	"github.com/filecab/filecab/pkg/types"
	"github.com/filecab/filecab/pkg/utils"
)

const treeLabelMaxLen = 12

// TreeLogic projects the active links into a virtual directory tree:
// record type / record / category, plus an Uncategorized branch for files
// without any link. Nothing here is stored; the tree is recomputed per call.
type TreeLogic struct {
	ctx  context.Context
	core *core.Core
}

func NewTreeLogic(ctx context.Context, core *core.Core) *TreeLogic {
	return &TreeLogic{
		ctx:  ctx,
		core: core,
	}
}

func (l *TreeLogic) BuildTree() (*types.TreeNode, error) {
	groups, err := l.core.Store().FileLinkStore().GroupActiveSlots(l.ctx)
	if err != nil && err != sql.ErrNoRows {
		return nil, errors.New("TreeLogic.BuildTree.FileLinkStore.GroupActiveSlots", i18n.ERROR_INTERNAL, err)
	}

	labels := l.resolveLabels(groups)

	root := &types.TreeNode{
		Label: "Files",
		Kind:  types.TREE_NODE_ROOT,
	}

	// groups arrive sorted by (record_type, record_id, category), so one
	// sequential pass reconstructs the hierarchy
	var (
		typeNode   *types.TreeNode
		recordNode *types.TreeNode
	)
	for _, g := range groups {
		if typeNode == nil || typeNode.Label != g.RecordType {
			typeNode = &types.TreeNode{
				Label: g.RecordType,
				Kind:  types.TREE_NODE_RECORD_TYPE,
			}
			root.Children = append(root.Children, typeNode)
			recordNode = nil
		}
		if recordNode == nil || recordNode.RecordID != g.RecordID {
			label, ok := labels[g.RecordType+"/"+g.RecordID]
			if !ok {
				label = utils.ShortLabel(g.RecordID, treeLabelMaxLen)
			}
			recordNode = &types.TreeNode{
				Label:    label,
				Kind:     types.TREE_NODE_RECORD,
				RecordID: g.RecordID,
			}
			typeNode.Children = append(typeNode.Children, recordNode)
		}

		recordNode.Children = append(recordNode.Children, &types.TreeNode{
			Label: g.Category,
			Kind:  types.TREE_NODE_CATEGORY,
			Count: g.Total,
		})
		recordNode.Count += g.Total
		typeNode.Count += g.Total
		root.Count += g.Total
	}

	unlinked, err := l.core.Store().FileStore().Total(l.ctx, types.ListFileOptions{Unlinked: true})
	if err != nil {
		return nil, errors.New("TreeLogic.BuildTree.FileStore.Total", i18n.ERROR_INTERNAL, err)
	}
	if unlinked > 0 {
		root.Children = append(root.Children, &types.TreeNode{
			Label: types.RECORD_TYPE_UNCATEGORIZED,
			Kind:  types.TREE_NODE_RECORD_TYPE,
			Count: unlinked,
		})
		root.Count += unlinked
	}

	return root, nil
}

// resolveLabels looks record display names up through the registered
// resolvers, keyed "recordType/recordID". A failing resolver degrades to id
// labels instead of failing the tree.
func (l *TreeLogic) resolveLabels(groups []types.SlotGroup) map[string]string {
	byType := make(map[string][]string)
	for _, g := range groups {
		byType[g.RecordType] = append(byType[g.RecordType], g.RecordID)
	}

	labels := make(map[string]string)
	for recordType, ids := range byType {
		resolver := l.core.NameResolver(recordType)
		if resolver == nil {
			continue
		}
		resolved, err := resolver(l.ctx, lo.Uniq(ids))
		if err != nil {
			slog.Warn("name resolver failed, falling back to id labels", slog.String("record_type", recordType), slog.String("error", err.Error()))
			continue
		}
		for id, name := range resolved {
			if name == "" {
				continue
			}
			labels[recordType+"/"+id] = name
		}
	}
	return labels
}
