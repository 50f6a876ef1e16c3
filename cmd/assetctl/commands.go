package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/sysu-ecnc-dev/asset-tracker/backend/internal/client"
	"github.com/sysu-ecnc-dev/asset-tracker/backend/internal/domain"
	"github.com/sysu-ecnc-dev/asset-tracker/backend/internal/inventory"
)

var errUsage = errors.New("参数错误")

type app struct {
	profilePath string
	profile     *Profile
	client      *client.Client
	out         io.Writer
}

type command struct {
	usage string
	run   func(ctx context.Context, a *app, args []string) error
}

var commands = map[string]command{
	"signin":       {"signin -email <email> -password <password>", runSignIn},
	"signup":       {"signup -name <name> -email <email> -password <password>", runSignUp},
	"signout":      {"signout", runSignOut},
	"me":           {"me", runMe},
	"profile":      {"profile [-base-url <url>]", runProfile},
	"list":         {"list [-q <query>] [-by name|type|status|employee]", runList},
	"add":          {"add -type <type> -employee-id <id> -serial <sn> [-name] [-status] [-assigned-to]", runAdd},
	"edit":         {"edit <id> [-name] [-type] [-status] [-assigned-to] [-employee-id] [-serial]", runEdit},
	"delete":       {"delete <id>", runDelete},
	"stats":        {"stats", runStats},
	"recent":       {"recent", runRecent},
	"scan":         {"scan <code>", runScan},
	"export":       {"export [-o Asset_Inventory.xlsx]", runExport},
	"email-report": {"email-report [-to <email>]", runEmailReport},
}

func (a *app) saveToken() error {
	a.profile.Token = a.client.Token()
	return saveProfile(a.profilePath, a.profile)
}

// assetFlags 只把命令行中显式给出的字段写入草稿
type assetFlags struct {
	fs     *flag.FlagSet
	values map[string]*string
}

func newAssetFlags(fs *flag.FlagSet) *assetFlags {
	af := &assetFlags{fs: fs, values: make(map[string]*string)}
	af.values["name"] = fs.String("name", "", "资产名称")
	af.values["type"] = fs.String("type", "", "资产类型")
	af.values["status"] = fs.String("status", "", "资产状态")
	af.values["assigned-to"] = fs.String("assigned-to", "", "持有人")
	af.values["employee-id"] = fs.String("employee-id", "", "员工编号")
	af.values["serial"] = fs.String("serial", "", "序列号")
	return af
}

func (af *assetFlags) apply(asset *domain.Asset) {
	af.fs.Visit(func(f *flag.Flag) {
		v, ok := af.values[f.Name]
		if !ok {
			return
		}
		switch f.Name {
		case "name":
			asset.Name = *v
		case "type":
			asset.Type = domain.AssetType(*v)
		case "status":
			asset.Status = domain.AssetStatus(*v)
		case "assigned-to":
			asset.AssignedTo = *v
		case "employee-id":
			asset.EmployeeID = *v
		case "serial":
			asset.SerialNumber = *v
		}
	})
}

func printAssets(w io.Writer, assets []domain.Asset) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tTYPE\tSTATUS\tEMPLOYEE ID\tSERIAL\tASSIGNED TO")
	for _, asset := range assets {
		fmt.Fprintf(tw, "%s\t%s\t%s (%s)\t%s (%s)\t%s\t%s\t%s\n",
			asset.ID, asset.Name,
			asset.Type, asset.Type.Icon(),
			asset.Status, asset.Status.Color(),
			asset.EmployeeID, asset.SerialNumber, asset.AssignedTo)
	}
	return tw.Flush()
}

func runSignIn(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("signin", flag.ContinueOnError)
	email := fs.String("email", "", "邮箱")
	password := fs.String("password", "", "密码")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	user, err := a.client.SignIn(ctx, *email, *password)
	if err != nil {
		return err
	}
	if err := a.saveToken(); err != nil {
		return fmt.Errorf("无法保存登录状态: %w", err)
	}

	fmt.Fprintf(a.out, "已登录: %s <%s>\n", user.Name, user.Email)
	return nil
}

func runSignUp(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("signup", flag.ContinueOnError)
	name := fs.String("name", "", "姓名")
	email := fs.String("email", "", "邮箱")
	password := fs.String("password", "", "密码")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	user, err := a.client.SignUp(ctx, *name, *email, *password)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "注册成功: %s <%s>，请使用 signin 登录\n", user.Name, user.Email)
	return nil
}

func runSignOut(ctx context.Context, a *app, args []string) error {
	err := a.client.SignOut(ctx)

	// 无论服务端是否成功吊销，本地都不再保留 token
	a.client.SetToken("")
	if saveErr := a.saveToken(); saveErr != nil {
		return fmt.Errorf("无法保存登录状态: %w", saveErr)
	}
	if err != nil {
		return err
	}

	fmt.Fprintln(a.out, "已退出登录")
	return nil
}

func runMe(ctx context.Context, a *app, args []string) error {
	user, err := a.client.Me(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "%s <%s> (id: %s)\n", user.Name, user.Email, user.ID)
	return nil
}

func runProfile(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("profile", flag.ContinueOnError)
	baseURL := fs.String("base-url", "", "服务端地址")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	if *baseURL != "" {
		a.profile.BaseURL = strings.TrimRight(*baseURL, "/")
		if err := saveProfile(a.profilePath, a.profile); err != nil {
			return err
		}
	}

	loggedIn := "否"
	if a.profile.Token != "" {
		loggedIn = "是"
	}
	fmt.Fprintf(a.out, "配置文件: %s\n服务端: %s\n已登录: %s\n", a.profilePath, a.profile.BaseURL, loggedIn)
	return nil
}

func runList(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	query := fs.String("q", "", "搜索内容")
	by := fs.String("by", "employee", "筛选字段 (name, type, status, employee)")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	category, err := inventory.ParseFilterCategory(*by)
	if err != nil {
		return err
	}

	list := inventory.NewAssetList(a.client)
	if err := list.Refresh(ctx); err != nil {
		return err
	}
	list.SearchQuery = *query
	list.FilterCategory = category

	return printAssets(a.out, list.Visible())
}

func runAdd(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("add", flag.ContinueOnError)
	af := newAssetFlags(fs)
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	list := inventory.NewAssetList(a.client)
	list.OpenCreate()
	af.apply(list.Draft())
	if err := list.Save(ctx); err != nil {
		return err
	}

	assets := list.Assets()
	created := assets[len(assets)-1]
	fmt.Fprintf(a.out, "已新增资产 %s\n", created.ID)
	return nil
}

func runEdit(ctx context.Context, a *app, args []string) error {
	if len(args) == 0 || strings.HasPrefix(args[0], "-") {
		return errUsage
	}
	id := args[0]

	fs := flag.NewFlagSet("edit", flag.ContinueOnError)
	af := newAssetFlags(fs)
	if err := fs.Parse(args[1:]); err != nil {
		return errUsage
	}

	list := inventory.NewAssetList(a.client)
	if err := list.Refresh(ctx); err != nil {
		return err
	}
	if err := list.OpenEdit(id); err != nil {
		return err
	}
	af.apply(list.Draft())
	if err := list.Save(ctx); err != nil {
		return err
	}

	fmt.Fprintf(a.out, "已更新资产 %s\n", id)
	return nil
}

func runDelete(ctx context.Context, a *app, args []string) error {
	if len(args) != 1 {
		return errUsage
	}

	list := inventory.NewAssetList(a.client)
	if err := list.Delete(ctx, args[0]); err != nil {
		return err
	}

	fmt.Fprintf(a.out, "已删除资产 %s，剩余 %d 项\n", args[0], len(list.Assets()))
	return nil
}

func runStats(ctx context.Context, a *app, args []string) error {
	dashboard := inventory.NewDashboard(a.client)
	if err := dashboard.Focus(ctx); err != nil {
		return err
	}

	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	for _, tile := range dashboard.Tiles() {
		fmt.Fprintf(tw, "%s\t%d\t%s\n", tile.Title, tile.Value, tile.Icon)
	}
	fmt.Fprintln(tw)
	for _, shortcut := range dashboard.Shortcuts() {
		fmt.Fprintf(tw, "%s\tassetctl %s\n", shortcut.Title, shortcut.Command)
	}
	return tw.Flush()
}

func runRecent(ctx context.Context, a *app, args []string) error {
	assets, err := a.client.RecentAssets(ctx)
	if err != nil {
		return err
	}
	return printAssets(a.out, assets)
}

func runScan(ctx context.Context, a *app, args []string) error {
	if len(args) != 1 {
		return errUsage
	}

	list := inventory.NewAssetList(a.client)
	if err := list.Refresh(ctx); err != nil {
		return err
	}

	asset, ok := inventory.Lookup(list.Assets(), args[0])
	if !ok {
		fmt.Fprintf(a.out, "没有找到与 %q 匹配的资产\n", args[0])
		return nil
	}
	return printAssets(a.out, []domain.Asset{asset})
}

func runExport(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	output := fs.String("o", "Asset_Inventory.xlsx", "输出文件")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	f, err := os.Create(*output)
	if err != nil {
		return err
	}

	if err := a.client.DownloadInventoryReport(ctx, f); err != nil {
		f.Close()
		_ = os.Remove(*output)
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	fmt.Fprintf(a.out, "报表已保存到 %s\n", *output)
	return nil
}

func runEmailReport(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("email-report", flag.ContinueOnError)
	to := fs.String("to", "", "收件人，默认发送给自己")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	if err := a.client.EmailInventoryReport(ctx, *to); err != nil {
		return err
	}

	fmt.Fprintln(a.out, "报表已加入发送队列")
	return nil
}
