package xdiag

import (
	"html"
	"net/url"
	"strings"

	"github.com/omeyang/xdiag/pkg/diagnostics/xscript"
)

// ClientScriptResource 客户端脚本在资源端点中的名称。
const ClientScriptResource = "client"

// ClientScriptGenerator 返回生成客户端脚本标签的 Generator：
//
//	<script type="text/javascript" src="/glimpse/resource.axd?n=client&amp;requestId=..." async></script>
func ClientScriptGenerator(baseURI, resourceName string) xscript.Generator {
	src := strings.TrimRight(strings.TrimPrefix(baseURI, "~"), "/") + "/" + resourceName
	return xscript.GeneratorFunc(func(requestID string) ([]string, error) {
		q := url.Values{}
		q.Set("n", ClientScriptResource)
		q.Set("requestId", requestID)
		tag := `<script type="text/javascript" src="` + html.EscapeString(src+"?"+q.Encode()) + `" async></script>`
		return []string{tag}, nil
	})
}
