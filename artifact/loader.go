package artifact

import (
	"context"
	"fmt"

	"github.com/rushteam/recserve/matrix"
	"github.com/rushteam/recserve/model"
)

// Loader 从 BlobSource 装载一套策略产物并组装 Bundle。
// 装载是确定性的、除填充缓存外无副作用；任何一步失败都只报废这一个策略，
// 不影响其他策略的装载与服务。
type Loader struct {
	// Source 产物数据源（文件目录 / KV 存储 / 内存）
	Source BlobSource

	// Normalizer 外部标识归一函数，必须与离线建表侧一致。
	// 为 nil 时使用 NumericNormalizer。
	Normalizer Normalizer

	// Neighbors 覆盖近邻产物中的 k'（<=0 表示取产物内的训练值）
	Neighbors int
}

// Load 装载指定家族的产物。映射表与交互表在各家族间共享同一份 blob，
// 但每个 Bundle 独立解析、互不引用，保证策略间的失败隔离。
func (l *Loader) Load(ctx context.Context, kind Kind) (*Bundle, error) {
	users, items, err := l.loadMappers(ctx)
	if err != nil {
		return nil, err
	}

	interRaw, err := l.Source.Read(ctx, BlobInteractions)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", BlobInteractions, err)
	}
	entries, err := parseInteractions(interRaw)
	if err != nil {
		return nil, err
	}
	mat, err := matrix.NewCSR(users.Len(), items.Len(), entries)
	if err != nil {
		return nil, err
	}

	b := &Bundle{
		Kind:       kind,
		Matrix:     mat,
		Users:      users,
		Items:      items,
		Popularity: popularityRanking(mat.ColSums()),
	}

	switch kind {
	case KindALS:
		raw, err := l.Source.Read(ctx, BlobALSModel)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", BlobALSModel, err)
		}
		m, err := decodeALS(raw)
		if err != nil {
			return nil, err
		}
		if err := checkShape("als", m.Users(), m.Items(), users.Len(), items.Len()); err != nil {
			return nil, err
		}
		b.ALS = m
	case KindUserKNN:
		raw, err := l.Source.Read(ctx, BlobKNNModel)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", BlobKNNModel, err)
		}
		p, err := decodeKNN(raw)
		if err != nil {
			return nil, err
		}
		k := l.Neighbors
		if k <= 0 {
			k = p.Neighbors
		}
		b.KNN = model.NewNearestNeighbors(mat, k)
	case KindLatent:
		raw, err := l.Source.Read(ctx, BlobLatentModel)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", BlobLatentModel, err)
		}
		m, err := decodeLatent(raw)
		if err != nil {
			return nil, err
		}
		if err := checkShape("latent", m.Users(), m.Items(), users.Len(), items.Len()); err != nil {
			return nil, err
		}
		b.Latent = m
	default:
		return nil, fmt.Errorf("artifact: unknown kind %q", kind)
	}

	return b, nil
}

func (l *Loader) loadMappers(ctx context.Context) (users, items *Mapper, err error) {
	userRaw, err := l.Source.Read(ctx, BlobUserMap)
	if err != nil {
		return nil, nil, fmt.Errorf("read %s: %w", BlobUserMap, err)
	}
	userEntries, err := parseIDMap(userRaw, "user_idx", "user_id")
	if err != nil {
		return nil, nil, err
	}
	users, err = NewMapper(userEntries, l.Normalizer)
	if err != nil {
		return nil, nil, err
	}

	itemRaw, err := l.Source.Read(ctx, BlobItemMap)
	if err != nil {
		return nil, nil, fmt.Errorf("read %s: %w", BlobItemMap, err)
	}
	itemEntries, err := parseIDMap(itemRaw, "item_idx", "item_id")
	if err != nil {
		return nil, nil, err
	}
	items, err = NewMapper(itemEntries, l.Normalizer)
	if err != nil {
		return nil, nil, err
	}
	return users, items, nil
}

// checkShape 校验模型的索引空间与映射表一致，错配视为产物损坏。
func checkShape(name string, modelUsers, modelItems, mapUsers, mapItems int) error {
	if modelUsers != mapUsers {
		return fmt.Errorf("artifact: %s model has %d users, map has %d", name, modelUsers, mapUsers)
	}
	if modelItems != mapItems {
		return fmt.Errorf("artifact: %s model has %d items, map has %d", name, modelItems, mapItems)
	}
	return nil
}
