package source

// Resolve 从一个题包已记录的来源中选出要返回的地址：
// 先按主标签匹配，再按备用标签匹配；两者都未指定时返回任意一条记录；
// 指定了标签但都未命中时返回 nil。
func Resolve(recorded []PackageSource, primary, fallback *int32) *string {
	if primary != nil {
		if s := findTag(recorded, *primary); s != nil {
			return s
		}
	}
	if fallback != nil {
		if s := findTag(recorded, *fallback); s != nil {
			return s
		}
	}
	if primary == nil && fallback == nil && len(recorded) > 0 {
		s := recorded[0].Source
		return &s
	}
	return nil
}

func findTag(recorded []PackageSource, tag int32) *string {
	for i := range recorded {
		if recorded[i].SourceTag == tag {
			s := recorded[i].Source
			return &s
		}
	}
	return nil
}
